package human

import (
	"encoding"
	"flag"
	"os"
	"path/filepath"
)

// Path represents a path on the file system.
//
// The special prefix "~/" stands for the home directory of the user the
// program runs as. Values keep the prefix as written; callers expand it with
// Expand when they open the path.
type Path string

func (p Path) String() string {
	return string(p)
}

// Expand returns the path with a "~/" prefix replaced by the user's home
// directory.
func (p Path) Expand() (string, error) {
	s := string(p)
	if len(s) >= 2 && s[0] == '~' && s[1] == os.PathSeparator {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		s = filepath.Join(home, s[2:])
	}
	return s, nil
}

func (p *Path) Set(s string) error {
	*p = Path(s)
	return nil
}

func (p *Path) UnmarshalText(b []byte) error {
	return p.Set(string(b))
}

var (
	_ encoding.TextUnmarshaler = (*Path)(nil)
	_ flag.Value               = (*Path)(nil)
)
