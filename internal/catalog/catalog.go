// internal/catalog/catalog.go
//
// Sound folder catalog: which folders on the audio module's card hold a
// sound bank, what they are called, and which panel button picks them in
// the sound chooser.
//
// Source (Load):
//   1. If path is non-empty, read that file.
//   2. Otherwise fall back to the embedded default_folders.txt.
//
// File format, one folder per line, '#' starts a comment:
//
//	<folder> <name> [button]
//
// Constraints:
//   • folder is 1..15 (it fills the high nibble of the play command).
//   • button, when present, is 0..4 and used by at most one folder.

package catalog

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

//go:embed default_folders.txt
var embeddedFolders string

// MaxFolder is the largest folder number the play command can address.
const MaxFolder = 15

// Entry is one sound bank.
type Entry struct {
	Folder int    `json:"folder"`
	Name   string `json:"name"`
	Button int    `json:"button"` // -1 when not reachable from the chooser
}

// Catalog is an immutable folder table.
type Catalog struct {
	entries  []Entry
	byFolder map[int]Entry
	byButton map[int]int
}

// Load reads the catalog from path, or the embedded default when path is "".
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(strings.NewReader(embeddedFolders))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the embedded catalog. It panics only if the embedded
// file is malformed.
func Default() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads catalog lines from r.
func Parse(r io.Reader) (*Catalog, error) {
	c := &Catalog{byFolder: map[int]Entry{}, byButton: map[int]int{}}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		e, err := parseLine(s)
		if err != nil {
			return nil, fmt.Errorf("catalog: line %d: %w", line, err)
		}
		if _, dup := c.byFolder[e.Folder]; dup {
			return nil, fmt.Errorf("catalog: line %d: folder %d listed twice", line, e.Folder)
		}
		if e.Button >= 0 {
			if _, dup := c.byButton[e.Button]; dup {
				return nil, fmt.Errorf("catalog: line %d: button %d already mapped", line, e.Button)
			}
			c.byButton[e.Button] = e.Folder
		}
		c.byFolder[e.Folder] = e
		c.entries = append(c.entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(c.entries) == 0 {
		return nil, errors.New("catalog: no folders")
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].Folder < c.entries[j].Folder })
	return c, nil
}

func parseLine(s string) (Entry, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Entry{}, errors.New("want <folder> <name> [button]")
	}
	folder, err := strconv.Atoi(fields[0])
	if err != nil || folder < 1 || folder > MaxFolder {
		return Entry{}, fmt.Errorf("bad folder %q", fields[0])
	}
	e := Entry{Folder: folder, Name: fields[1], Button: -1}
	if len(fields) > 2 {
		b, err := strconv.Atoi(fields[2])
		if err != nil || b < 0 || b > 4 {
			return Entry{}, fmt.Errorf("bad button %q", fields[2])
		}
		e.Button = b
	}
	return e, nil
}

// Name returns the folder's display name, or "Folder N" if unknown.
func (c *Catalog) Name(folder int) string {
	if e, ok := c.byFolder[folder]; ok {
		return e.Name
	}
	return "Folder " + strconv.Itoa(folder)
}

// FolderForButton maps a chooser press to a folder.
func (c *Catalog) FolderForButton(button int) (int, bool) {
	f, ok := c.byButton[button]
	return f, ok
}

// Entries lists the folders in ascending order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}
