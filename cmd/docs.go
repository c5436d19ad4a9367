package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

// child command without children
const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// child with children
const childParentPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
has_children: true
---
`

// grandchildren
const grandchildPage = `---
layout: default
title: %s
parent: %s
grand_parent: %s
nav_order: %d
---
`

// docsCmd writes the command tree's Markdown docs
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown docs for every command",
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		return doc.GenMarkdownTreeCustom(RootCmd, dir, filePrepender, linkHandler)
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}

// docName is a command's doc file base name, eg "unicycler_graph_stats"
func docName(c *cobra.Command) string {
	return strings.ReplaceAll(c.CommandPath(), " ", "_")
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	var find func(c *cobra.Command, order int) string
	find = func(c *cobra.Command, order int) string {
		if docName(c) == base {
			return frontMatter(c, order)
		}
		for i, child := range visible(c) {
			if fm := find(child, i); fm != "" {
				return fm
			}
		}
		return ""
	}
	return find(RootCmd, 0)
}

// frontMatter is a command's just-the-docs header from its depth in the tree
func frontMatter(c *cobra.Command, order int) string {
	switch {
	case !c.HasParent():
		return fmt.Sprintf(rootPage, c.Name(), order)
	case !c.Parent().HasParent() && len(visible(c)) == 0:
		return fmt.Sprintf(childPage, c.Name(), c.Parent().Name(), order)
	case !c.Parent().HasParent():
		return fmt.Sprintf(childParentPage, c.Name(), c.Parent().Name(), order)
	default:
		return fmt.Sprintf(grandchildPage, c.Name(), c.Parent().Name(), c.Parent().Parent().Name(), order)
	}
}

// visible is a command's children that get docs
func visible(c *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, child := range c.Commands() {
		if child.IsAvailableCommand() && !child.IsAdditionalHelpTopicCommand() {
			out = append(out, child)
		}
	}
	return out
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	if base == RootCmd.Name() {
		return "/"
	}
	return base
}
