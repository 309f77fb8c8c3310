package homepage

// Entry is one bookmark's properties in Homepage's bookmarks.yaml.
type Entry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description"`
}

// Group maps a group name to its bookmarks. Each bookmark name maps to a
// one-element list holding its properties:
//
//	- Developer:
//	    - Github:
//	        - abbr: GH
//	          href: https://github.com/
type Group map[string][]map[string][]Entry

// Config is the root of bookmarks.yaml.
type Config []Group
