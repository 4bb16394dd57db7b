package rubric

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed criteria.yaml
var criteriaYAML []byte

// Levels maps each criterion to a descriptor per score level 0..5.
type Levels map[Criterion]map[int]string

func ParseLevels(raw []byte) (Levels, error) {
	var lv Levels
	if err := yaml.Unmarshal(raw, &lv); err != nil {
		return nil, fmt.Errorf("decode rubric levels: %w", err)
	}
	for _, c := range Criteria() {
		if len(lv[c]) == 0 {
			return nil, fmt.Errorf("rubric levels: missing criterion %q", c)
		}
	}
	return lv, nil
}

func DefaultLevels() Levels {
	lv, err := ParseLevels(criteriaYAML)
	if err != nil {
		panic(err)
	}
	return lv
}

func (lv Levels) Describe(c Criterion, score int) string {
	return lv[c][score]
}
