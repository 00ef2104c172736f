package main

import (
	"fmt"

	"github.com/kbforge/kbforge/internal/config"
	"github.com/kbforge/kbforge/internal/errors"
)

// runConfig gets and sets persistent settings. Settings use dotted names
// such as "user.home" or "core.editor".
func runConfig(a *app, args []string) error {
	if len(args) == 0 {
		return configList(a)
	}

	switch args[0] {
	case "list":
		return configList(a)
	case "path":
		fmt.Println(a.config.Path())
		return nil
	case "get":
		if len(args) != 2 {
			return configUsageError("get NAME")
		}
		return configGet(a, args[1])
	case "set":
		if len(args) != 3 {
			return configUsageError("set NAME VALUE")
		}
		return configSet(a, args[1], args[2])
	case "unset":
		if len(args) != 2 {
			return configUsageError("unset NAME")
		}
		return configUnset(a, args[1])
	default:
		// "config NAME" and "config NAME VALUE" work as shorthands.
		switch len(args) {
		case 1:
			return configGet(a, args[0])
		case 2:
			return configSet(a, args[0], args[1])
		}
		return configUsageError("[get|set|unset|list|path]")
	}
}

func configUsageError(usage string) error {
	return errors.New(errors.ValidationFailed, "Invalid config arguments").
		WithSuggestion("Usage: kbforge config " + usage)
}

func configList(a *app) error {
	for _, item := range a.config.Items() {
		fmt.Printf("%s=%s\n", item.Name, item.Value)
	}
	return nil
}

func configGet(a *app, name string) error {
	if value, ok := a.config.Get(name); ok {
		fmt.Println(value)
	}
	return nil
}

func configSet(a *app, name, value string) error {
	// The repo path must survive directory changes.
	if name == config.SettingUserHome {
		a.config.SetHomePath(value)
	} else {
		a.config.Set(name, value)
	}
	return a.config.Write()
}

func configUnset(a *app, name string) error {
	if !a.config.Unset(name) {
		return nil
	}
	return a.config.Write()
}
