// Package human provides value types for flags and configuration files that
// parse and format human-friendly representations, like byte counts with
// units or paths with a home directory prefix.
package human

import (
	"encoding"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bytes represents a number of bytes.
//
// The type parses values like "4096", "42 KB" or "1.5MiB", accepting both
// factors of 1000 (KB, MB, GB) and factors of 1024 (KiB, MiB, GiB, or the
// short forms Ki, Mi, Gi). Formatting always uses factors of 1024.
type Bytes uint64

const (
	B Bytes = 1

	KB Bytes = 1000 * B
	MB Bytes = 1000 * KB
	GB Bytes = 1000 * MB

	KiB Bytes = 1024 * B
	MiB Bytes = 1024 * KiB
	GiB Bytes = 1024 * MiB
)

var byteUnits = map[string]Bytes{
	"":    B,
	"b":   B,
	"kb":  KB,
	"mb":  MB,
	"gb":  GB,
	"ki":  KiB,
	"kib": KiB,
	"mi":  MiB,
	"mib": MiB,
	"gi":  GiB,
	"gib": GiB,
}

func ParseBytes(s string) (Bytes, error) {
	value := strings.TrimSpace(s)
	i := len(value)
	for i > 0 && !isDigit(value[i-1]) {
		i--
	}
	unit, ok := byteUnits[strings.ToLower(strings.TrimSpace(value[i:]))]
	if !ok {
		return 0, fmt.Errorf("malformed bytes representation: %q", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value[:i]), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed bytes representation: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("invalid negative byte count: %q", s)
	}
	return Bytes(math.Floor(f * float64(unit))), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (b Bytes) String() string {
	switch {
	case b >= GiB:
		return ftoa(float64(b)/float64(GiB)) + " GiB"
	case b >= MiB:
		return ftoa(float64(b)/float64(MiB)) + " MiB"
	case b >= KiB:
		return ftoa(float64(b)/float64(KiB)) + " KiB"
	}
	return strconv.FormatUint(uint64(b), 10) + " B"
}

func ftoa(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func (b *Bytes) Set(s string) error {
	p, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = p
	return nil
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(b))
}

func (b *Bytes) UnmarshalJSON(j []byte) error {
	return json.Unmarshal(j, (*uint64)(b))
}

func (b Bytes) MarshalYAML() (any, error) {
	return uint64(b), nil
}

func (b *Bytes) UnmarshalYAML(y *yaml.Node) error {
	var s string
	if err := y.Decode(&s); err != nil {
		return err
	}
	return b.Set(s)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes) UnmarshalText(t []byte) error {
	return b.Set(string(t))
}

var (
	_ fmt.Stringer = Bytes(0)

	_ json.Marshaler   = Bytes(0)
	_ json.Unmarshaler = (*Bytes)(nil)

	_ yaml.Marshaler   = Bytes(0)
	_ yaml.Unmarshaler = (*Bytes)(nil)

	_ encoding.TextMarshaler   = Bytes(0)
	_ encoding.TextUnmarshaler = (*Bytes)(nil)

	_ flag.Value = (*Bytes)(nil)
)
