// Package enums provides type-safe enumeration types shared by the backend client and the web interface.
//
// Each enum is a small struct type with an unexported name, so values can only be obtained from the
// exported constants or the Parse functions. All types implement fmt.Stringer and
// encoding.TextMarshaler/TextUnmarshaler, which makes them usable in cookies, path values and JSON.
//
// Theme is generated by go-pkgz/enum from the unexported theme type below (theme_enum.go), run
// "go generate ./app/enums" after changing it. Category carries hyphenated URL names with a title and
// noun per value, the generator can't express those, so it is written in the same shape by hand.
//
// Usage:
//
//	cat, err := enums.ParseCategory(r.PathValue("category"))
//	if err != nil {
//	    // unknown category
//	}
//	fmt.Println(cat.String()) // "file-sensing"
//	fmt.Println(cat.Title())  // "File Sensing Jobs"
package enums

import (
	"fmt"
	"strings"
)

// Category is a job category. Each category is served by its own group of backend endpoints
// and has its own page in the dashboard.
type Category struct {
	name  string
	title string
	noun  string
}

// Category values
var (
	CategoryFileSensing = Category{name: "file-sensing", title: "File Sensing Jobs", noun: "file sensing"}
	CategoryFiltering   = Category{name: "filtering", title: "Character Filtering Jobs", noun: "character filtering"}
)

var categoryValues = []Category{CategoryFileSensing, CategoryFiltering}

// Categories returns all known categories in navigation order
func Categories() []Category {
	res := make([]Category, len(categoryValues))
	copy(res, categoryValues)
	return res
}

// ParseCategory converts a string (as used in URLs and backend paths) to Category
func ParseCategory(s string) (Category, error) {
	for _, c := range categoryValues {
		if strings.EqualFold(c.name, s) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("invalid category %q", s)
}

// String returns the URL form of the category, e.g. "file-sensing"
func (c Category) String() string { return c.name }

// Title returns the page title of the category
func (c Category) Title() string { return c.title }

// Noun returns a lower-case human name, used in messages like "Failed to fetch file sensing jobs"
func (c Category) Noun() string { return c.noun }

// Path returns the dashboard page path for the category
func (c Category) Path() string { return "/" + c.name }

// IsZero reports whether the category is unset
func (c Category) IsZero() bool { return c.name == "" }

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) { return []byte(c.name), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Toggle returns the opposite theme
func (e Theme) Toggle() Theme {
	if e == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

//go:generate go run github.com/go-pkgz/enum@latest -type theme -lower

// theme represents UI themes.
// This is an unexported type used only as input for the code generator.
// Use the exported Theme type and its constants in actual code.
type theme int

const (
	themeLight theme = iota
	themeDark
)
