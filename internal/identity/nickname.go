package identity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultNicknameGroups = [][]string{
	{"michael", "mike", "mikey"},
	{"christopher", "chris", "kristopher", "kris"},
	{"william", "will", "bill", "billy", "willie"},
	{"robert", "rob", "bob", "bobby", "robbie"},
	{"james", "jim", "jimmy", "jamie"},
	{"joseph", "joe", "joey"},
	{"joshua", "josh"},
	{"matthew", "matt"},
	{"daniel", "dan", "danny"},
	{"david", "dave"},
	{"anthony", "tony"},
	{"thomas", "tom", "tommy"},
	{"benjamin", "ben", "benny"},
	{"nicholas", "nick", "nicky"},
	{"zachary", "zach", "zack"},
	{"alexander", "alex"},
	{"andrew", "andy", "drew"},
	{"jonathan", "jon"},
	{"john", "johnny", "jack"},
	{"kenneth", "ken", "kenny"},
	{"steven", "stephen", "steve"},
	{"timothy", "tim"},
	{"gregory", "greg"},
	{"patrick", "pat"},
	{"richard", "rich", "rick", "ricky"},
	{"edward", "ed", "eddie"},
	{"samuel", "sam", "sammy"},
	{"jacob", "jake"},
	{"cameron", "cam"},
	{"calvin", "cal"},
	{"theodore", "ted", "teddy"},
	{"frederick", "fred", "freddie"},
	{"donald", "don"},
	{"ronald", "ron", "ronnie"},
	{"douglas", "doug"},
	{"gerald", "jerry"},
	{"lawrence", "larry"},
	{"leonard", "leo", "lenny"},
	{"maxwell", "max"},
	{"mitchell", "mitch"},
	{"nathaniel", "nathan", "nate"},
	{"raymond", "ray"},
	{"jeffrey", "jeff"},
	{"dwayne", "duane"},
	{"deandre", "dre"},
	{"gabriel", "gabe"},
	{"charles", "charlie", "chuck"},
	{"phillip", "philip", "phil"},
	{"vincent", "vince"},
}

// NicknameTable is a bidirectional nickname equivalence lookup.
type NicknameTable struct {
	groupsByName map[string][]int
}

var defaultNicknames = NewNicknameTable(defaultNicknameGroups)

func NewNicknameTable(groups [][]string) *NicknameTable {
	table := &NicknameTable{groupsByName: make(map[string][]int, len(groups)*3)}
	table.add(groups, 0)
	return table
}

// DefaultNicknames returns the built-in table.
func DefaultNicknames() *NicknameTable {
	return defaultNicknames
}

// IsNicknameVariant checks a and b against the built-in table.
func IsNicknameVariant(a, b string) bool {
	return defaultNicknames.IsVariant(a, b)
}

// IsVariant reports whether a and b are equal or share an equivalence group
// after normalization.
func (t *NicknameTable) IsVariant(a, b string) bool {
	left := Normalize(a)
	right := Normalize(b)
	if left == "" || right == "" {
		return false
	}
	if left == right {
		return true
	}
	if t == nil {
		return false
	}

	rightGroups := t.groupsByName[right]
	for _, group := range t.groupsByName[left] {
		for _, candidate := range rightGroups {
			if group == candidate {
				return true
			}
		}
	}
	return false
}

// Len returns the number of distinct names in the table.
func (t *NicknameTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.groupsByName)
}

func (t *NicknameTable) add(groups [][]string, offset int) {
	for i, group := range groups {
		groupID := offset + i
		for _, raw := range group {
			name := Normalize(raw)
			if name == "" {
				continue
			}
			t.groupsByName[name] = append(t.groupsByName[name], groupID)
		}
	}
}

type nicknameFile struct {
	Groups [][]string `yaml:"groups"`
}

// LoadNicknameFile builds a table from the built-in groups plus the groups
// listed in a YAML file of the form `groups: [[michael, mike], ...]`.
func LoadNicknameFile(path string) (*NicknameTable, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return defaultNicknames, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nickname file %s: %w", path, err)
	}

	var parsed nicknameFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse nickname file %s: %w", path, err)
	}

	table := NewNicknameTable(defaultNicknameGroups)
	table.add(parsed.Groups, len(defaultNicknameGroups))
	return table, nil
}
