package datastores

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document accepted by [LoadSeed]:
//
//	persons:
//	  - name: Ada Lovelace
//	    number: 39-44-5323523
type Seed struct {
	Persons []*Person `yaml:"persons"`
}

// LoadSeed decodes a [Seed] from r. Every person must have a name and a number,
// and an explicit id must be positive and not repeat another person's.
func LoadSeed(r io.Reader) ([]*Person, error) {
	var seed Seed
	err := yaml.NewDecoder(r).Decode(&seed)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	ids := make(map[PersonID]int, len(seed.Persons))
	for i, p := range seed.Persons {
		if p == nil || p.Name == "" || p.Number == "" || p.ID < 0 {
			return nil, fmt.Errorf("seed person #%d: %w", i, ErrInvalidObject)
		}
		if p.ID == 0 {
			continue
		}
		if j, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("seed person #%d: id %d already used by #%d: %w", i, p.ID, j, ErrInvalidObject)
		}
		ids[p.ID] = i
	}
	return seed.Persons, nil
}

// LoadSeedFile is [LoadSeed] reading from the named file.
func LoadSeedFile(name string) ([]*Person, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSeed(f)
}
