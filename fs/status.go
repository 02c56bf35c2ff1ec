// Package fs implements filesystem-backed persistence: the per-book
// resumable status record and the local-library update scanner.
package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pzhu/bookfetch"
)

const (
	statusFileName  = "status.json"
	journalFileName = "downloaded_chapters.jsonl"
)

var _ bookfetch.StatusService = (*StatusService)(nil)

// StatusService opens per-book status records under a save directory. Each
// book gets a folder named "<id>_<sanitized name>".
type StatusService struct {
	Root string
}

// NewStatusService returns a service rooted at dir.
func NewStatusService(dir string) *StatusService {
	return &StatusService{Root: dir}
}

// OpenBook creates the book folder if needed and returns its status record.
func (s *StatusService) OpenBook(bookID, bookName string) (bookfetch.StatusStore, error) {
	if bookID == "" {
		return nil, bookfetch.Errorf(bookfetch.EINVALID, "book ID required")
	}
	folder := filepath.Join(s.Root, bookID+"_"+sanitizeName(bookName))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, bookfetch.Errorf(bookfetch.EINTERNAL, "creating book folder: %v", err)
	}
	return &StatusFile{folder: folder, bookID: bookID}, nil
}

var _ bookfetch.StatusStore = (*StatusFile)(nil)

// StatusFile is the on-disk status record for one book folder. The canonical
// file is status.json with a top-level "downloaded" map of chapter id to a
// [title, content-or-null] pair; the legacy chapter_status_<book id>.json
// form (a bare map) is still read. Successful saves additionally append to a
// JSONL journal merged on load, so a crash between flushes loses nothing.
// Safe for concurrent use by fetch workers.
type StatusFile struct {
	folder string
	bookID string

	mu      sync.Mutex
	entries map[string]bookfetch.ChapterEntry
}

// statusEntry is the wire form of one chapter outcome: a [title, content]
// pair with null content marking a failed attempt.
type statusEntry struct {
	Title   string
	Content *string
}

func (e statusEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Title, e.Content})
}

func (e *statusEntry) UnmarshalJSON(b []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) > 0 {
		if err := json.Unmarshal(arr[0], &e.Title); err != nil {
			return err
		}
	}
	if len(arr) > 1 {
		if err := json.Unmarshal(arr[1], &e.Content); err != nil {
			return err
		}
	}
	return nil
}

type statusRecord struct {
	Downloaded map[string]statusEntry `json:"downloaded"`
}

// journalLine is one resume-journal record.
type journalLine struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Load reads the status file (canonical, then legacy) and merges the resume
// journal over it. Missing files yield an empty record.
func (f *StatusFile) Load(ctx context.Context) (map[string]bookfetch.ChapterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readStatus()
	if err != nil {
		return nil, err
	}
	if err := f.mergeJournal(entries); err != nil {
		return nil, err
	}
	f.entries = entries
	return copyEntries(entries), nil
}

func (f *StatusFile) readStatus() (map[string]bookfetch.ChapterEntry, error) {
	for _, name := range []string{statusFileName, "chapter_status_" + f.bookID + ".json"} {
		data, err := os.ReadFile(filepath.Join(f.folder, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, bookfetch.Errorf(bookfetch.EINTERNAL, "reading %s: %v", name, err)
		}
		return parseStatus(data, name)
	}
	return map[string]bookfetch.ChapterEntry{}, nil
}

// parseStatus accepts both the wrapped form {"downloaded": {...}} and the
// legacy bare map.
func parseStatus(data []byte, name string) (map[string]bookfetch.ChapterEntry, error) {
	var rec statusRecord
	if err := json.Unmarshal(data, &rec); err == nil && rec.Downloaded != nil {
		return toEntries(rec.Downloaded), nil
	}
	var bare map[string]statusEntry
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, bookfetch.Errorf(bookfetch.EINTERNAL, "parsing %s: %v", name, err)
	}
	return toEntries(bare), nil
}

func toEntries(m map[string]statusEntry) map[string]bookfetch.ChapterEntry {
	out := make(map[string]bookfetch.ChapterEntry, len(m))
	for id, e := range m {
		out[id] = bookfetch.ChapterEntry{Title: e.Title, Content: e.Content}
	}
	return out
}

// mergeJournal replays journal lines over entries. A journal line wins only
// when the map has no usable content for that chapter.
func (f *StatusFile) mergeJournal(entries map[string]bookfetch.ChapterEntry) error {
	file, err := os.Open(filepath.Join(f.folder, journalFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "opening resume journal: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var jl journalLine
		if err := json.Unmarshal([]byte(line), &jl); err != nil {
			// A torn tail line from a crash is expected; skip it.
			continue
		}
		if e, ok := entries[jl.ID]; ok && e.Saved() {
			continue
		}
		content := jl.Content
		entries[jl.ID] = bookfetch.ChapterEntry{Title: jl.Title, Content: &content}
	}
	if err := scanner.Err(); err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "reading resume journal: %v", err)
	}
	return nil
}

// SaveChapter records a successful chapter and appends it to the resume
// journal.
func (f *StatusFile) SaveChapter(ctx context.Context, id, title, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	f.entries[id] = bookfetch.ChapterEntry{Title: title, Content: &content}
	return f.appendJournal(journalLine{ID: id, Title: title, Content: content})
}

// SaveError records a chapter as attempted-but-failed. An existing entry
// with usable content is never downgraded.
func (f *StatusFile) SaveError(ctx context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()
	if e, ok := f.entries[id]; ok && e.Saved() {
		return nil
	}
	f.entries[id] = bookfetch.ChapterEntry{Title: title}
	return nil
}

func (f *StatusFile) appendJournal(jl journalLine) error {
	data, err := json.Marshal(jl)
	if err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "encoding journal line: %v", err)
	}
	file, err := os.OpenFile(filepath.Join(f.folder, journalFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "opening resume journal: %v", err)
	}
	defer file.Close()
	if _, err := file.Write(append(data, '\n')); err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "appending to resume journal: %v", err)
	}
	return nil
}

// Flush writes the full record to status.json atomically, then truncates the
// journal since its contents are now covered by the status file.
func (f *StatusFile) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure()

	rec := statusRecord{Downloaded: make(map[string]statusEntry, len(f.entries))}
	for id, e := range f.entries {
		rec.Downloaded[id] = statusEntry{Title: e.Title, Content: e.Content}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "encoding status record: %v", err)
	}

	path := filepath.Join(f.folder, statusFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "writing status record: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "replacing status record: %v", err)
	}

	if err := os.Remove(filepath.Join(f.folder, journalFileName)); err != nil && !os.IsNotExist(err) {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "truncating resume journal: %v", err)
	}
	return nil
}

// Entries returns a copy of the current in-memory record.
func (f *StatusFile) Entries() map[string]bookfetch.ChapterEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyEntries(f.entries)
}

// Clear discards all recorded outcomes, on disk included.
func (f *StatusFile) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = map[string]bookfetch.ChapterEntry{}
	for _, name := range []string{statusFileName, "chapter_status_" + f.bookID + ".json", journalFileName} {
		_ = os.Remove(filepath.Join(f.folder, name))
	}
}

// Folder returns the book folder path backing the record.
func (f *StatusFile) Folder() string {
	return f.folder
}

func (f *StatusFile) ensure() {
	if f.entries == nil {
		f.entries = map[string]bookfetch.ChapterEntry{}
	}
}

func copyEntries(in map[string]bookfetch.ChapterEntry) map[string]bookfetch.ChapterEntry {
	out := make(map[string]bookfetch.ChapterEntry, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// sanitizeName makes a book name safe to use as a directory component.
func sanitizeName(name string) string {
	if name == "" {
		return "book"
	}
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseBookFolder splits a book folder name into its id and display name
// parts. The second return value is false when the name does not follow the
// "<id>_<name>" convention.
func ParseBookFolder(name string) (bookID, bookName string, ok bool) {
	i := strings.Index(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	id := name[:i]
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return id, name[i+1:], true
}
