package actions

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Command is one state-changing operation the assistant can run on the backend.
type Command struct {
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Endpoint     string   `yaml:"endpoint" json:"endpoint"`
	Method       string   `yaml:"method" json:"method"`
	Required     []string `yaml:"required" json:"required"`
	Optional     []string `yaml:"optional" json:"optional"`
	Confirmation string   `yaml:"confirmation" json:"confirmation"`
	AutoExecute  bool     `yaml:"auto_execute" json:"auto_execute"`
	Examples     []string `yaml:"examples" json:"examples,omitempty"`
}

// Catalog is immutable after Load.
type Catalog struct {
	commands []Command
	byName   map[string]*Command
	labels   map[string]string
}

type catalogFile struct {
	Commands []Command         `yaml:"commands"`
	Labels   map[string]string `yaml:"labels"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(catalogYAML)
}

func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse action catalog: %w", err)
	}
	c := &Catalog{
		commands: file.Commands,
		byName:   make(map[string]*Command, len(file.Commands)),
		labels:   file.Labels,
	}
	for i := range c.commands {
		cmd := &c.commands[i]
		if cmd.Name == "" || cmd.Endpoint == "" || cmd.Method == "" {
			return nil, fmt.Errorf("action catalog entry %d is incomplete", i)
		}
		if _, dup := c.byName[cmd.Name]; dup {
			return nil, fmt.Errorf("duplicate action %q in catalog", cmd.Name)
		}
		cmd.Method = strings.ToUpper(cmd.Method)
		c.byName[cmd.Name] = cmd
	}
	if c.labels == nil {
		c.labels = map[string]string{}
	}
	return c, nil
}

// Get returns a copy of the named command.
func (c *Catalog) Get(name string) (Command, bool) {
	cmd, ok := c.byName[name]
	if !ok {
		return Command{}, false
	}
	return *cmd, true
}

func (c *Catalog) Commands() []Command {
	out := make([]Command, len(c.commands))
	copy(out, c.commands)
	return out
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParamLabel is the human-readable name used when asking for a parameter.
func (c *Catalog) ParamLabel(name string) string {
	if label, ok := c.labels[name]; ok {
		return label
	}
	return name
}

// PromptSection lists commands and examples for the extraction prompt.
func (c *Catalog) PromptSection() string {
	var b strings.Builder
	for i, cmd := range c.commands {
		fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, cmd.Name, cmd.Description)
		fmt.Fprintf(&b, "   Obrigatórios: [%s]", strings.Join(cmd.Required, ", "))
		if len(cmd.Optional) > 0 {
			fmt.Fprintf(&b, "; opcionais: [%s]", strings.Join(cmd.Optional, ", "))
		}
		b.WriteString("\n")
		if len(cmd.Examples) > 0 {
			quoted := make([]string, len(cmd.Examples))
			for j, ex := range cmd.Examples {
				quoted[j] = fmt.Sprintf("%q", ex)
			}
			fmt.Fprintf(&b, "   Exemplos: %s\n", strings.Join(quoted, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
