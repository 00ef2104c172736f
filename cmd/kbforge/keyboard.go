package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/hardware"
	"github.com/kbforge/kbforge/internal/menu"
	"github.com/kbforge/kbforge/internal/repo"
	"github.com/kbforge/kbforge/internal/search"
	"github.com/kbforge/kbforge/internal/terminal"
)

func runKeyboard(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New(errors.ValidationFailed, "Missing keyboard subcommand").
			WithSuggestion(`Use "kbforge keyboard add", "remove", or "list"`)
	}

	switch args[0] {
	case "add":
		return keyboardAdd(a, args[1:])
	case "remove":
		return keyboardRemove(a, args[1:])
	case "list":
		return keyboardList(a, args[1:])
	default:
		return errors.New(errors.ValidationFailed, fmt.Sprintf("Unknown keyboard subcommand %q", args[0])).
			WithSuggestion(`Use "kbforge keyboard add", "remove", or "list"`)
	}
}

// keyboardAdd adds config files for a keyboard and adds it to the build
// matrix. Components not named with flags are picked from a menu.
func keyboardAdd(a *app, args []string) error {
	fs := flag.NewFlagSet("keyboard add", flag.ContinueOnError)
	keyboardID := fs.String("keyboard", "", "ID of the keyboard board/shield to add")
	fs.StringVar(keyboardID, "k", *keyboardID, "shorthand for --keyboard")
	controllerID := fs.String("controller", "", "ID of the controller board to add")
	fs.StringVar(controllerID, "c", *controllerID, "shorthand for --controller")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	groups, err := hardware.ForRepo(a.ctx, r)
	if err != nil {
		return err
	}

	var keyboard, controller *hardware.Definition

	switch {
	case *keyboardID != "":
		if keyboard = groups.FindKeyboard(*keyboardID); keyboard == nil {
			return errors.KeyboardNotFoundError(*keyboardID)
		}

		if *controllerID != "" {
			if !keyboard.IsShield() {
				return errors.New(errors.HardwareInvalid,
					fmt.Sprintf("Keyboard %q has an onboard controller and does not require a controller board", keyboard.ID))
			}
			if controller = groups.FindController(*controllerID); controller == nil {
				return errors.ControllerNotFoundError(*controllerID)
			}
		}

	case *controllerID != "":
		// A controller without a keyboard narrows the keyboard menu to the
		// shields that fit it.
		if controller = groups.FindController(*controllerID); controller == nil {
			return errors.ControllerNotFoundError(*controllerID)
		}
		groups.Keyboards = filterDefinitions(groups.Keyboards, func(kb *hardware.Definition) bool {
			return kb.IsShield() && hardware.IsCompatible([]*hardware.Definition{controller}, kb)
		})
	}

	if keyboard == nil {
		if keyboard, err = pickHardware("Select a keyboard:", groups.Keyboards); err != nil {
			return err
		}
	}

	if keyboard.IsShield() {
		if controller == nil {
			candidates := filterDefinitions(groups.Controllers, func(c *hardware.Definition) bool {
				return hardware.IsCompatible([]*hardware.Definition{c}, keyboard)
			})
			if controller, err = pickHardware("Select a controller:", candidates); err != nil {
				return err
			}
		}

		if !hardware.IsCompatible([]*hardware.Definition{controller}, keyboard) {
			return errors.IncompatibleError(keyboard.ID, controller.ID)
		}
	}

	name := keyboard.ID
	if controller != nil {
		name += ", " + controller.ID
	}

	added, err := addKeyboard(r, keyboard, controller)
	if err != nil {
		return err
	}

	if added {
		a.formatter.Success("Added %q", name)
	} else {
		a.formatter.Info("%q is already in the build matrix", name)
	}
	return nil
}

// keyboardRemove removes entries from the build matrix, either matched by
// flags or picked from a menu.
func keyboardRemove(a *app, args []string) error {
	fs := flag.NewFlagSet("keyboard remove", flag.ContinueOnError)
	board := fs.String("board", "", "ID of the board to remove")
	fs.StringVar(board, "b", *board, "shorthand for --board")
	shield := fs.String("shield", "", "ID of the shield to remove")
	fs.StringVar(shield, "s", *shield, "shorthand for --shield")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	matrix, err := r.BuildMatrix()
	if err != nil {
		return err
	}
	include := matrix.Include()
	if len(include) == 0 {
		a.formatter.Info("The build matrix is empty")
		return nil
	}

	var doomed []repo.BuildItem
	if *board != "" || *shield != "" {
		for _, item := range include {
			if (*board == "" || item.Board == *board) && (*shield == "" || item.Shield == *shield) {
				doomed = append(doomed, item)
			}
		}
		if len(doomed) == 0 {
			return errors.New(errors.HardwareNotFound, "No matching entries in the build matrix").
				WithSuggestion(`Run "kbforge keyboard list --build" to see the current builds`)
		}
	} else {
		if err := requireInteractive("--board or --shield"); err != nil {
			return err
		}
		item, err := menu.Show("Select a keyboard to remove:", include, menu.Config[repo.BuildItem]{
			Filter: func(item repo.BuildItem, query string) bool {
				return search.ContainsFold(item.Render().String(), query)
			},
		})
		if err != nil {
			return err
		}
		doomed = []repo.BuildItem{item}
	}

	removed := matrix.Remove(doomed...)
	if err := matrix.Write(); err != nil {
		return err
	}

	for _, item := range removed {
		a.formatter.Success("Removed %q", item.Render().String())
	}
	return nil
}

// keyboardList prints the available hardware, or the build matrix with
// --build.
func keyboardList(a *app, args []string) error {
	fs := flag.NewFlagSet("keyboard list", flag.ContinueOnError)
	showBuild := fs.Bool("build", false, "show the build matrix")
	listType := fs.String("type", "all", "list only items of this type: all, keyboard, controller, or interconnect")
	fs.StringVar(listType, "t", *listType, "shorthand for --type")
	board := fs.String("board", "", "list only keyboards compatible with this controller board")
	shield := fs.String("shield", "", "list only controllers compatible with this keyboard shield")
	standalone := fs.Bool("standalone", false, "list only keyboards with onboard controllers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	if *showBuild {
		return listBuildMatrix(a, r)
	}

	groups, err := hardware.ForRepo(a.ctx, r)
	if err != nil {
		return err
	}

	switch {
	case *board != "":
		controller := groups.FindController(*board)
		if controller == nil {
			return errors.ControllerNotFoundError(*board)
		}
		groups.Keyboards = filterDefinitions(groups.Keyboards, func(kb *hardware.Definition) bool {
			return kb.IsShield() && hardware.IsCompatible([]*hardware.Definition{controller}, kb)
		})
		*listType = "keyboard"

	case *shield != "":
		keyboard := groups.FindKeyboard(*shield)
		if keyboard == nil {
			return errors.KeyboardNotFoundError(*shield)
		}
		if !keyboard.IsShield() {
			return errors.New(errors.HardwareInvalid,
				fmt.Sprintf("Keyboard %q is a standalone keyboard", keyboard.ID))
		}
		groups.Controllers = filterDefinitions(groups.Controllers, func(c *hardware.Definition) bool {
			return hardware.IsCompatible([]*hardware.Definition{c}, keyboard)
		})
		*listType = "controller"

	case *standalone:
		groups.Keyboards = filterDefinitions(groups.Keyboards, (*hardware.Definition).IsBoard)
		*listType = "keyboard"
	}

	switch *listType {
	case "all":
		printHardware(a, "Keyboards", groups.Keyboards)
		printHardware(a, "Controllers", groups.Controllers)
		printHardware(a, "Interconnects", groups.Interconnects)
	case "keyboard":
		printHardware(a, "", groups.Keyboards)
	case "controller":
		printHardware(a, "", groups.Controllers)
	case "interconnect":
		printHardware(a, "", groups.Interconnects)
	default:
		return errors.ValidationError("--type", *listType,
			"must be one of all, keyboard, controller, or interconnect")
	}
	return nil
}

func listBuildMatrix(a *app, r *repo.Repo) error {
	matrix, err := r.BuildMatrix()
	if err != nil {
		return err
	}
	include := matrix.Include()

	hasSnippet := false
	hasCmakeArgs := false
	hasArtifactName := false
	for _, item := range include {
		hasSnippet = hasSnippet || item.Snippet != ""
		hasCmakeArgs = hasCmakeArgs || item.CmakeArgs != ""
		hasArtifactName = hasArtifactName || item.ArtifactName != ""
	}

	headers := []string{"Board", "Shield"}
	if hasSnippet {
		headers = append(headers, "Snippet")
	}
	if hasArtifactName {
		headers = append(headers, "Artifact Name")
	}
	if hasCmakeArgs {
		headers = append(headers, "CMake Args")
	}

	table := a.formatter.Table()
	table.Headers(headers...)
	for _, item := range include {
		row := []string{item.Board, item.Shield}
		if hasSnippet {
			row = append(row, item.Snippet)
		}
		if hasArtifactName {
			row = append(row, item.ArtifactName)
		}
		if hasCmakeArgs {
			row = append(row, item.CmakeArgs)
		}
		table.Row(row...)
	}
	table.Print()
	return nil
}

func printHardware(a *app, header string, items []*hardware.Definition) {
	if len(items) == 0 {
		return
	}

	if header != "" {
		a.formatter.Header(header)
	}
	table := a.formatter.Table()
	table.Headers("ID", "Name")
	for _, item := range items {
		table.Row(item.ID, item.Name)
	}
	table.Print()
	fmt.Println()
}

// pickHardware shows a filterable menu over hardware definitions.
func pickHardware(title string, items []*hardware.Definition) (*hardware.Definition, error) {
	if err := requireInteractive("--keyboard or --controller"); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New(errors.HardwareNotFound, "No matching hardware was found").
			WithSuggestion(`Run "kbforge update" to fetch the latest keyboard data`)
	}

	return menu.Show(title, items, menu.Config[*hardware.Definition]{
		Filter: hardwareFilter,
	})
}

var hardwareFuzzy = search.NewFuzzy()

// hardwareFilter matches picker input against a definition: substring over
// the rendered row first, then fuzzy subsequence over the ID so "nnv2"
// still finds nice_nano_v2.
func hardwareFilter(item *hardware.Definition, query string) bool {
	if search.ContainsFold(item.Render().String(), query) {
		return true
	}
	_, ok := hardwareFuzzy.Match(query, item.ID)
	return ok
}

// requireInteractive fails with a hint at the named flags when stdin is not
// a terminal.
func requireInteractive(flags string) error {
	if terminal.IsInteractive() {
		return nil
	}
	return errors.New(errors.NotInteractive, "An interactive terminal is required to show a menu").
		WithSuggestion(fmt.Sprintf("Pass %s to skip the menu", flags))
}

func filterDefinitions(items []*hardware.Definition, keep func(*hardware.Definition) bool) []*hardware.Definition {
	var out []*hardware.Definition
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// addKeyboard copies the keyboard's starter files into the config directory
// and appends its builds to the matrix. It reports whether anything new was
// added.
func addKeyboard(r *repo.Repo, keyboard, controller *hardware.Definition) (bool, error) {
	if err := copyKeyboardFile(r, keyboard.KeymapPath()); err != nil {
		return false, err
	}
	if err := copyKeyboardFile(r, keyboard.ConfigPath()); err != nil {
		return false, err
	}

	items := buildItems(keyboard, controller)

	matrix, err := r.BuildMatrix()
	if err != nil {
		return false, err
	}

	added := matrix.Append(items...)
	if err := matrix.Write(); err != nil {
		return false, err
	}
	return len(added) > 0, nil
}

// buildItems expands a keyboard and optional controller into build matrix
// entries, one per split half.
func buildItems(keyboard, controller *hardware.Definition) []repo.BuildItem {
	names := keyboard.Siblings
	if len(names) == 0 {
		names = []string{keyboard.ID}
	}

	var items []repo.BuildItem
	if keyboard.IsShield() {
		for _, shield := range names {
			items = append(items, repo.BuildItem{Board: controller.ID, Shield: shield})
		}
	} else {
		for _, board := range names {
			items = append(items, repo.BuildItem{Board: board})
		}
	}
	return items
}

// copyKeyboardFile copies a starter keymap or conf file into the config
// directory unless one already exists there.
func copyKeyboardFile(r *repo.Repo, path string) error {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.HardwareInvalid, "Could not read the keyboard file").
			WithDetails("Path: " + path)
	}
	defer src.Close()

	dest := filepath.Join(r.ConfigPath(), filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, errors.ConfigInvalid, "Could not create the keyboard file").
			WithDetails("Path: " + dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return errors.Wrap(err, errors.ConfigInvalid, "Could not copy the keyboard file").
			WithDetails("Path: " + dest)
	}
	return nil
}
