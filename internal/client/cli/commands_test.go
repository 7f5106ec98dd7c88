package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/medimate/internal/client/api"
	"github.com/dmitrijs2005/medimate/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	user     *api.User
	password string
	records  map[string]*api.Record
	uploaded []byte
	upload   api.Upload
	update   api.RecordUpdate
	deleted  []string
	download *api.Download
	err      error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: map[string]*api.Record{}}
}

func (f *fakeAPI) Register(_ context.Context, name, email, password string) (*api.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.user = &api.User{ID: "u-1", Name: name, Email: email}
	f.password = password
	return f.user, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*api.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.user = &api.User{ID: "u-1", Name: "Ann", Email: email}
	f.password = password
	return f.user, nil
}

func (f *fakeAPI) Logout()                        { f.user = nil }
func (f *fakeAPI) CurrentUser() *api.User         { return f.user }
func (f *fakeAPI) Ping(context.Context) error     { return f.err }
func (f *fakeAPI) Profile(context.Context) (*api.User, error) {
	if f.user == nil {
		return nil, api.ErrNotLoggedIn
	}
	return f.user, nil
}

func (f *fakeAPI) Upload(_ context.Context, up api.Upload) (*api.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(up.Body)
	if err != nil {
		return nil, err
	}
	f.upload, f.uploaded = up, data
	rec := &api.Record{ID: "r-1", PatientID: up.PatientID, Title: up.Title, Filename: up.Filename}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeAPI) List(context.Context) ([]api.Record, error) {
	out := make([]api.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, f.err
}

func (f *fakeAPI) Get(_ context.Context, id string) (*api.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "Audio record not found"}
	}
	return r, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, upd api.RecordUpdate) (*api.Record, error) {
	f.update = upd
	return &api.Record{ID: id}, f.err
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeAPI) Download(context.Context, string) (*api.Download, error) {
	return f.download, f.err
}

// stubPrompts replays answers for every simple-text prompt in order.
func stubPrompts(t *testing.T, answers ...string) {
	t.Helper()
	origST, origGP, origML := getSimpleText, getPassword, getMultiline
	t.Cleanup(func() { getSimpleText, getPassword, getMultiline = origST, origGP, origML })

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		return getSimpleText(nil, "", nil)
	}
	getPassword = func(io.Writer) ([]byte, error) { return []byte("pw"), nil }
}

func newTestApp(f *fakeAPI) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{config: &config.Config{DownloadDir: "downloads"}, api: f, out: &out}, &out
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFakeAPI()
	a, out := newTestApp(f)

	stubPrompts(t, "Ann", "ann@example.com")
	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "pw", f.password)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(ann@example.com)", a.getStatus())
	assert.Contains(t, out.String(), "Registered and logged in as Ann <ann@example.com>")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.getStatus())

	stubPrompts(t, "ann@example.com")
	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())

	require.NoError(t, a.Profile(context.Background()))
	assert.Contains(t, out.String(), "Email: ann@example.com")
}

func TestLogin_Error(t *testing.T) {
	f := newFakeAPI()
	f.err = &api.Error{Status: 400, Message: "Invalid credentials"}
	a, _ := newTestApp(f)

	stubPrompts(t, "ann@example.com")
	err := a.Login(context.Background())
	assert.ErrorContains(t, err, "Invalid credentials")
	assert.False(t, a.isLoggedIn())
}

func TestUploadListShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Visit.MP3")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o600))

	f := newFakeAPI()
	f.user = &api.User{ID: "u-1"}
	a, out := newTestApp(f)

	stubPrompts(t, path, "p-9", "Cleaning")
	require.NoError(t, a.Upload(context.Background()))
	assert.Equal(t, "audio-bytes", string(f.uploaded))
	assert.Equal(t, "Visit.MP3", f.upload.Filename)
	assert.Equal(t, "p-9", f.upload.PatientID)
	assert.Equal(t, "audio/mpeg", f.upload.ContentType)
	assert.Contains(t, out.String(), "Record r-1 created")

	out.Reset()
	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "PATIENT")
	assert.Contains(t, out.String(), "Cleaning")

	require.NoError(t, a.Show(context.Background(), "r-1"))
	err := a.Show(context.Background(), "missing")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestUpload_MissingFile(t *testing.T) {
	a, _ := newTestApp(newFakeAPI())
	stubPrompts(t, filepath.Join(t.TempDir(), "nope.wav"), "p", "t")
	err := a.Upload(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestList_Empty(t *testing.T) {
	a, out := newTestApp(newFakeAPI())
	require.NoError(t, a.List(context.Background()))
	assert.Equal(t, "No records\n", out.String())
}

func TestEdit(t *testing.T) {
	f := newFakeAPI()
	a, out := newTestApp(f)

	stubPrompts(t, "", "")
	require.NoError(t, a.Edit(context.Background(), "r-1"))
	assert.Contains(t, out.String(), "Nothing to change")

	stubPrompts(t, "New title", "")
	require.NoError(t, a.Edit(context.Background(), "r-1"))
	require.NotNil(t, f.update.Title)
	assert.Equal(t, "New title", *f.update.Title)
	assert.Nil(t, f.update.Transcript)
}

func TestDelete_AsksForConfirmation(t *testing.T) {
	f := newFakeAPI()
	a, out := newTestApp(f)

	stubPrompts(t, "n")
	require.NoError(t, a.Delete(context.Background(), "r-1"))
	assert.Empty(t, f.deleted)
	assert.Contains(t, out.String(), "Cancelled")

	stubPrompts(t, "Y")
	require.NoError(t, a.Delete(context.Background(), "r-1"))
	assert.Equal(t, []string{"r-1"}, f.deleted)
}

func TestDownload_SavesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	f := newFakeAPI()
	f.download = &api.Download{Filename: "../visit.mp3", Data: []byte("abc")}
	a, out := newTestApp(f)

	require.NoError(t, a.Download(context.Background(), "r-1"))

	got, err := os.ReadFile(filepath.Join(dir, "downloads", "visit.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.True(t, strings.HasPrefix(out.String(), "Saved 3 bytes to "))
}

func TestRun_WarnsWhenServerUnreachable(t *testing.T) {
	f := newFakeAPI()
	f.err = api.ErrUnavailable
	a, out := newTestApp(f)
	a.config.ServerBaseURL = "http://127.0.0.1:1"
	a.reader = bufio.NewReader(strings.NewReader("exit\n"))

	a.Run(context.Background())

	assert.Contains(t, out.String(), "warning: http://127.0.0.1:1 is not reachable")
	assert.Contains(t, out.String(), "Bye!")
}
