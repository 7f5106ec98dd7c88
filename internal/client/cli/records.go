package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/medimate/internal/client/api"
	"github.com/dmitrijs2005/medimate/internal/filex"
)

var getMultiline = GetMultiline

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
}

func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := audioTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

// Upload asks for a local audio file, a patient id and a title, then sends
// the file. The call returns once the server has transcribed and
// summarized it.
func (a *App) Upload(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter path to audio file", a.out)
	if err != nil {
		return err
	}
	patientID, err := getSimpleText(a.reader, "Enter patient id", a.out)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	a.printf("Uploading %s, this may take a while...\n", filepath.Base(path))

	rec, err := a.api.Upload(ctx, api.Upload{
		PatientID:   patientID,
		Title:       title,
		Filename:    filepath.Base(path),
		ContentType: contentTypeFor(path),
		Body:        f,
	})
	if err != nil {
		return err
	}

	a.printf("Record %s created\n", rec.ID)
	a.printRecord(rec)
	return nil
}

func (a *App) List(ctx context.Context) error {
	recs, err := a.api.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.printf("No records\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATIENT\tTITLE\tCREATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\n", r.ID, r.PatientID, r.Title, r.CreatedDate, r.CreatedTime)
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.api.Get(ctx, id)
	if err != nil {
		return err
	}
	a.printRecord(rec)
	return nil
}

func (a *App) printRecord(r *api.Record) {
	a.printf("Title:    %s\nPatient:  %s\nCreated:  %s %s\nFile:     %s\n", r.Title, r.PatientID, r.CreatedDate, r.CreatedTime, r.Filename)
	if r.File != nil {
		a.printf("Size:     %d bytes\n", r.File.Length)
	}
	a.printf("\nTranscript:\n%s\n\nReport:\n%s\n", r.Transcript, r.FormattedReport)
}

// Download saves the record's audio under the configured download
// directory and prints the path.
func (a *App) Download(ctx context.Context, id string) error {
	d, err := a.api.Download(ctx, id)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		return err
	}

	name := filepath.Base(d.Filename)
	if name == "." || name == "/" || name == "" {
		name = id
	}
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, d.Data, 0o600); err != nil {
		return err
	}
	a.printf("Saved %d bytes to %s\n", len(d.Data), path)
	return nil
}

// Edit changes the title and/or the transcript. Empty answers keep the
// current value.
func (a *App) Edit(ctx context.Context, id string) error {
	title, err := getSimpleText(a.reader, "New title (empty to keep)", a.out)
	if err != nil {
		return err
	}
	transcript, err := getMultiline(a.reader, "New transcript (empty to keep)", a.out)
	if err != nil {
		return err
	}

	var upd api.RecordUpdate
	if title != "" {
		upd.Title = &title
	}
	if transcript != "" {
		upd.Transcript = &transcript
	}
	if upd.Title == nil && upd.Transcript == nil {
		a.printf("Nothing to change\n")
		return nil
	}

	rec, err := a.api.Update(ctx, id, upd)
	if err != nil {
		return err
	}
	a.printf("Record %s updated\n", rec.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete record %s and its audio? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.api.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("Record %s deleted\n", id)
	return nil
}
