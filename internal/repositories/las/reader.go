// internal/repositories/las/reader.go
// Parser LAS 2.0 (section ~V, ~W, ~C, ~P, ~A) untuk input analisis petrofisika.

package las

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"petrocalc/internal/services"
)

// HeaderItem adalah satu baris header: MNEM.UNIT VALUE : DESCRIPTION
type HeaderItem struct {
	Mnemonic    string `json:"mnemonic"`
	Unit        string `json:"unit,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

type File struct {
	Version []HeaderItem `json:"version"`
	Well    []HeaderItem `json:"well"`
	Curves  []HeaderItem `json:"curves"`
	Params  []HeaderItem `json:"params,omitempty"`

	Null    float64 `json:"null"`
	HasNull bool    `json:"has_null"`

	// Data disimpan per kolom, urutan sama dengan Curves.
	Data [][]float64 `json:"-"`
}

func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read mem-parse LAS dari reader. Data ~A boleh wrap; nilai dibaca sebagai aliran token.
func Read(r io.Reader) (*File, error) {
	out := &File{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	section := byte(0)
	var tokens []float64
	sawData := false
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if ln == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line[0] == '~' {
			if len(line) < 2 {
				return nil, malformed(ln, "empty section name")
			}
			section = toUpper(line[1])
			if section == 'A' {
				if len(out.Curves) == 0 {
					return nil, malformed(ln, "~A section before ~C curve definitions")
				}
				sawData = true
			}
			continue
		}
		switch section {
		case 'V', 'W', 'C', 'P':
			item, err := parseHeaderLine(line)
			if err != nil {
				return nil, malformed(ln, err.Error())
			}
			switch section {
			case 'V':
				out.Version = append(out.Version, item)
			case 'W':
				out.Well = append(out.Well, item)
				if item.Mnemonic == "NULL" {
					if v, err := strconv.ParseFloat(item.Value, 64); err == nil {
						out.Null, out.HasNull = v, true
					}
				}
			case 'C':
				out.Curves = append(out.Curves, item)
			case 'P':
				out.Params = append(out.Params, item)
			}
		case 'A':
			for _, tok := range strings.Fields(line) {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, malformed(ln, fmt.Sprintf("bad number %q", tok))
				}
				tokens = append(tokens, v)
			}
		default:
			// ~O (other) dan baris sebelum section pertama diabaikan
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read las: %w", err)
	}
	if !sawData || len(tokens) == 0 {
		return nil, fmt.Errorf("%w: las has no ~A data", services.ErrInsufficientData)
	}
	nc := len(out.Curves)
	if len(tokens)%nc != 0 {
		return nil, fmt.Errorf("%w: las data has %d values, not a multiple of %d curves", services.ErrInvalidSample, len(tokens), nc)
	}
	dedupeMnemonics(out.Curves)

	rows := len(tokens) / nc
	out.Data = make([][]float64, nc)
	for j := range out.Data {
		out.Data[j] = make([]float64, rows)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < nc; j++ {
			out.Data[j][i] = tokens[i*nc+j]
		}
	}
	return out, nil
}

func malformed(ln int, msg string) error {
	return fmt.Errorf("%w: las line %d: %s", services.ErrInvalidSample, ln, msg)
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// parseHeaderLine memecah "DEPT.M   1000.0 : Depth".
// Titik pertama memisahkan mnemonic; unit berakhir di spasi pertama setelahnya;
// titik dua terakhir memisahkan value dan description.
func parseHeaderLine(line string) (HeaderItem, error) {
	dot := strings.IndexByte(line, '.')
	if dot < 0 {
		return HeaderItem{}, fmt.Errorf("header line %q has no '.'", line)
	}
	item := HeaderItem{Mnemonic: strings.ToUpper(strings.TrimSpace(line[:dot]))}
	if item.Mnemonic == "" {
		return HeaderItem{}, fmt.Errorf("header line %q has no mnemonic", line)
	}
	rest := line[dot+1:]
	if sp := strings.IndexAny(rest, " \t"); sp >= 0 {
		item.Unit, rest = rest[:sp], rest[sp:]
	} else {
		item.Unit, rest = rest, ""
	}
	if c := strings.LastIndexByte(rest, ':'); c >= 0 {
		item.Value = strings.TrimSpace(rest[:c])
		item.Description = strings.TrimSpace(rest[c+1:])
	} else {
		item.Value = strings.TrimSpace(rest)
	}
	// unit tanpa spasi sebelum titik dua, mis. "GR.GAPI:"
	if c := strings.IndexByte(item.Unit, ':'); c >= 0 {
		item.Description = strings.TrimSpace(item.Unit[c+1:] + rest)
		item.Unit = item.Unit[:c]
		item.Value = ""
	}
	return item, nil
}

// Mnemonic ganda diberi akhiran :2, :3, ...
func dedupeMnemonics(items []HeaderItem) {
	seen := map[string]int{}
	for i := range items {
		m := items[i].Mnemonic
		seen[m]++
		if n := seen[m]; n > 1 {
			items[i].Mnemonic = fmt.Sprintf("%s:%d", m, n)
		}
	}
}

func lookup(items []HeaderItem, mnem string) string {
	for _, it := range items {
		if it.Mnemonic == mnem {
			return it.Value
		}
	}
	return ""
}

func (f *File) WellName() string { return lookup(f.Well, "WELL") }
func (f *File) Field() string    { return lookup(f.Well, "FLD") }
func (f *File) Company() string  { return lookup(f.Well, "COMP") }

// ParamFloat membaca nilai numerik positif dari section ~PARAMETER (mis. RW).
func (f *File) ParamFloat(mnem string) (float64, bool) {
	v, err := strconv.ParseFloat(lookup(f.Params, strings.ToUpper(mnem)), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func (f *File) Mnemonics() []string {
	out := make([]string, len(f.Curves))
	for i, c := range f.Curves {
		out[i] = c.Mnemonic
	}
	return out
}

// Column mengembalikan data satu kurva (case-insensitive).
func (f *File) Column(mnem string) ([]float64, bool) {
	mnem = strings.ToUpper(strings.TrimSpace(mnem))
	for i, c := range f.Curves {
		if c.Mnemonic == mnem {
			return f.Data[i], true
		}
	}
	return nil, false
}

// LogCurves mengonversi ke input petrofisika; kurva pertama dianggap kedalaman.
func (f *File) LogCurves() services.LogCurves {
	lc := services.LogCurves{Curves: make(map[string][]float64, len(f.Curves))}
	if len(f.Data) == 0 {
		return lc
	}
	lc.Depth = f.Data[0]
	for i, c := range f.Curves {
		lc.Curves[c.Mnemonic] = f.Data[i]
	}
	if f.HasNull {
		lc.Null = f.Null
	}
	return lc
}
