package storage

import (
	"path/filepath" // Extension handling
	"regexp"        // Unsafe character stripping
	"strings"       // Whitespace joining
	"unicode/utf8"  // ASCII filtering

	"golang.org/x/text/unicode/norm" // Unicode decomposition
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an uploaded file name to ASCII letters, digits,
// '_', '.' and '-', with path separators turned into underscores.
// The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	ascii := make([]rune, 0, len(name))
	for _, r := range name {
		if r < utf8.RuneSelf {
			ascii = append(ascii, r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(string(ascii))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// storedName picks the name an upload is saved under. Names that lose their
// extension during sanitising are replaced by a random one.
func storedName(original string, random func() string) (string, error) {
	name := SecureFilename(original)
	ext := strings.ToLower(filepath.Ext(original))
	if ext != "" && SecureFilename("x"+ext) != "x"+ext {
		ext = ""
	}
	switch {
	case name != "" && (ext == "" || filepath.Ext(name) != ""):
		return name, nil
	case ext != "":
		return random() + ext, nil
	default:
		return "", ErrInvalidFilename
	}
}
