package testdata

import (
	"embed"
	"fmt"

	"github.com/ayusman/fingerspell/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// ReadHand returns the raw JSON of a hand fixture.
func ReadHand(name string) ([]byte, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load hand %s: %w", name, err)
	}
	return data, nil
}

// LoadHand loads and parses a hand fixture by name (without extension).
func LoadHand(name string) (detector.HandLandmarks, error) {
	data, err := ReadHand(name)
	if err != nil {
		return detector.HandLandmarks{}, err
	}

	hand, err := detector.ParseHand(data)
	if err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("parse hand %s: %w", name, err)
	}
	return hand, nil
}

// HandNames lists the available fixtures.
func HandNames() ([]string, error) {
	entries, err := handsFS.ReadDir("hands")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		names = append(names, name[:len(name)-len(".json")])
	}
	return names, nil
}
