// Package topics adds file-backed help topics to a Cobra application.
// Topics are markdown documents carried in an fs.FS (typically embedded
// in the binary) and served through an extended help command, so
// `<app> help <topic>` works alongside `<app> help <command>`.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help document.
type Topic struct {
	Name    string
	Content string
}

// Manager holds the loaded topics and the help plumbing for one root
// command.
type Manager struct {
	topics       map[string]*Topic
	originalHelp func(*cobra.Command, []string)
	renderer     Renderer
}

// Load reads every markdown file under dir in fsys into a Manager.
// Nested directories are flattened; the topic name is the filename
// without its extension.
func Load(fsys fs.FS, dir string, renderer Renderer) (*Manager, error) {
	if renderer == nil {
		renderer = &PlainRenderer{}
	}
	m := &Manager{
		topics:   make(map[string]*Topic),
		renderer: renderer,
	}

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ".md")
		m.topics[name] = &Topic{Name: name, Content: string(content)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading help topics: %w", err)
	}
	return m, nil
}

// Get looks a topic up by name. Leading dashes are stripped so
// `help --qr` finds the "qr" topic.
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	t, ok := m.topics[name]
	return t, ok
}

// Names lists the loaded topics in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attach replaces root's help command with one that also answers topic
// names. Unknown names fall through to Cobra's own help.
func (m *Manager) Attach(root *cobra.Command) {
	m.originalHelp = root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf(`Help for any command or topic.
Run '%s help topics' to list the available topics.`, root.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				m.originalHelp(root, nil)
				return
			}
			if args[0] == "topics" {
				m.printIndex(cmd)
				return
			}
			if topic, ok := m.Get(args[0]); ok {
				cmd.Print(m.renderer.Render(topic.Content))
				return
			}
			m.originalHelp(root, args)
		},
	}
	root.SetHelpCommand(helpCmd)
}

func (m *Manager) printIndex(cmd *cobra.Command) {
	names := m.Names()
	if len(names) == 0 {
		cmd.Println("No help topics available.")
		return
	}
	cmd.Println("Available help topics:")
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	cmd.Printf("\nUse '%s help <topic>' to read one.\n", cmd.Root().Name())
}
