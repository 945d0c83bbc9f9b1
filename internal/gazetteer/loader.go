package gazetteer

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File names read by Load
const (
	StreetsFile  = "streetnames.txt"
	SuffixesFile = "streetsuffixes.yaml"
	SuburbsFile  = "suburbnames.txt"
)

//go:embed data/*
var embedded embed.FS

// LoadDefault builds the gazetteer bundled with the binary. The bundled
// tables are a sample of the council's streets and suburbs; production runs
// load the full lists with Load.
func LoadDefault() (*Gazetteer, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded gazetteer: %w", err)
	}
	return LoadFS(sub)
}

// Load builds a gazetteer from the three files in dir
func Load(dir string) (*Gazetteer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access gazetteer directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("gazetteer path is not a directory: %s", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS builds a gazetteer from the three files at the root of fsys
func LoadFS(fsys fs.FS) (*Gazetteer, error) {
	data := Data{
		Streets:  make(map[string][]string),
		Suffixes: make(map[string]string),
		Suburbs:  make(map[string]string),
		Hundreds: make(map[string][]string),
	}

	err := readLines(fsys, StreetsFile, func(n int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: expected STREET,SUBURB;SUBURB", n)
		}
		name := normalizeKey(fields[0])
		data.Streets[name] = append(data.Streets[name], splitList(fields[1])...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readLines(fsys, SuburbsFile, func(n int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: expected SUBURB,Canonical Name,HUNDRED;HUNDRED", n)
		}
		suburb := normalizeKey(fields[0])
		data.Suburbs[suburb] = strings.TrimSpace(fields[1])
		if len(fields) > 2 {
			for _, hundred := range splitList(fields[2]) {
				data.Hundreds[hundred] = append(data.Hundreds[hundred], suburb)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw, err := fs.ReadFile(fsys, SuffixesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SuffixesFile, err)
	}
	if err := yaml.Unmarshal(raw, &data.Suffixes); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SuffixesFile, err)
	}

	return New(data), nil
}

// readLines calls fn with the comma separated fields of every non-blank,
// non-comment line
func readLines(fsys fs.FS, name string, fn func(n int, fields []string) error) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(n, strings.Split(line, ",")); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = normalizeKey(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
