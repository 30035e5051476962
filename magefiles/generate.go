//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Paper builds the CLI and generates one paper for topic into papers/.
func Paper(topic string) error {
	mg.SerialDeps(Init, Build)
	out := "papers/" + slugify(topic) + ".md"
	if err := sh.RunV(binPath, "generate", "--output", out, "--bibtex", out+".bib", topic); err != nil {
		return err
	}
	fmt.Println("Wrote", out)
	return nil
}

// History builds the CLI and lists recorded runs.
func History() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "history")
}

func slugify(s string) string {
	b := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, r)
		case r >= 'A' && r <= 'Z':
			b = append(b, r+'a'-'A')
		default:
			if len(b) > 0 && b[len(b)-1] != '-' {
				b = append(b, '-')
			}
		}
	}
	if len(b) == 0 {
		return "paper"
	}
	if b[len(b)-1] == '-' {
		b = b[:len(b)-1]
	}
	return string(b)
}
