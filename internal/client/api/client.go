// Package api is a small client for the Medi Mate REST API. It keeps the
// bearer token returned by Register or Login and sends it on every call
// that needs one.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medimate/internal/common"
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	user  *User
}

// New returns a client for baseURL, e.g. http://127.0.0.1:5000. A zero
// timeout means no limit.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) setSession(token string, u *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.user = u
}

// Logout forgets the token.
func (c *Client) Logout() {
	c.setSession("", nil)
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser returns the user of the current session, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// envelope covers every JSON body the server sends.
type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Token   string          `json:"token"`
	User    *User           `json:"user"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, auth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if auth {
		token := c.Token()
		if token == "" {
			return nil, ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	var env envelope
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, &env); err == nil {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
}

// doJSON sends in as JSON (when non-nil) and decodes the response envelope.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, auth bool) (*envelope, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body, auth)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp.Body)
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return errors.New("response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Register creates an account and starts a session for it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"name": name, "email": email, "password": password}, false)
	if err != nil {
		return nil, err
	}
	c.setSession(env.Token, env.User)
	return env.User, nil
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, false)
	if err != nil {
		return nil, err
	}
	c.setSession(env.Token, env.User)
	return env.User, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/auth/profile", nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &u, nil
}

// Ping calls the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil, false)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Upload streams the file as multipart/form-data for the current user and
// returns the processed record.
func (c *Client) Upload(ctx context.Context, up Upload) (*Record, error) {
	user := c.CurrentUser()
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, user.ID, up))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/audio/upload", pr, true)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decodeData(env, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func writeUploadForm(mw *multipart.Writer, userID string, up Upload) error {
	fields := [][2]string{{"userId", userID}, {"patientId", up.PatientID}, {"title", up.Title}}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "audio", "filename": up.Filename}))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return err
	}
	return mw.Close()
}

func (c *Client) List(ctx context.Context) ([]Record, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/audio/files", nil, true)
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := decodeData(env, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Record, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/audio/file/"+url.PathEscape(id), nil, true)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decodeData(env, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Update(ctx context.Context, id string, upd RecordUpdate) (*Record, error) {
	env, err := c.doJSON(ctx, http.MethodPut, "/api/audio/file/"+url.PathEscape(id), upd, true)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decodeData(env, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/audio/file/"+url.PathEscape(id), nil, true)
	return err
}

// Download fetches the stored audio of record id.
func (c *Client) Download(ctx context.Context, id string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/audio/file/"+url.PathEscape(id)+"/download", nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	d := &Download{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}
