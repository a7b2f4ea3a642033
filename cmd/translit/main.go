// Command translit transliterates typed Latin text into another script.
//
// Without further flags it runs interactively: keys are read from the
// terminal and the transliterated line is shown as it is typed. Enter starts
// a new line, Esc or Ctrl-C quits. Changes to the settings file switch the
// active mapping immediately.
//
// With -filter, standard input is transliterated line by line.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/eiannone/keyboard"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/translit"
	"github.com/npillmayer/translit/profiles"
	"github.com/npillmayer/translit/session"
	"github.com/npillmayer/translit/settings"
	"github.com/npillmayer/translit/textmap"
)

var traceKeys = []string{
	"translit",
	"translit.mapfile",
	"translit.profiles",
	"translit.settings",
	"translit.session",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "translit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profileID := flag.String("profile", "", "language profile (see -list); default from settings or locale")
	mappingID := flag.String("mapping", "", "mapping of the profile, by ID (see -list)")
	settingsPath := flag.String("settings", "", "settings file (default $"+settings.EnvPath+" or user config dir)")
	mapFile := flag.String("mapfile", "", "custom mapping file (.toml, .yaml, .yml or .txt)")
	list := flag.Bool("list", false, "list profiles and their mappings")
	showTable := flag.Bool("table", false, "print the active mapping table")
	filter := flag.Bool("filter", false, "transliterate standard input line by line")
	save := flag.Bool("save", false, "store the selected profile and mapping in the settings file")
	verbose := flag.Bool("v", false, "trace to standard error")
	flag.Parse()

	level := tracing.LevelError
	if *verbose {
		level = tracing.LevelDebug
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}

	reg, err := profiles.Default()
	if err != nil {
		return err
	}
	if *list {
		return listProfiles(os.Stdout, reg)
	}

	path := *settingsPath
	if path == "" {
		if path, err = settings.DefaultPath(); err != nil {
			return err
		}
	}
	prefs, err := settings.Load(path)
	if err != nil {
		return err
	}
	want := choices{profile: *profileID, mapping: *mappingID, mapFile: *mapFile}
	sel, err := resolve(reg, prefs, want)
	if err != nil {
		return err
	}

	switch {
	case *save:
		if sel.profile == nil {
			return errors.New("-save needs a profile, not a mapping file")
		}
		prefs.SetProfile(sel.profile.ID.String())
		prefs.SetMappingIndex(sel.profile.ID.String(), sel.mapping)
		return prefs.Save(path)
	case *showTable:
		return textmap.Write(os.Stdout, sel.table)
	case *filter:
		return filterLines(os.Stdin, os.Stdout, sel.table)
	}
	return interactive(reg, path, want, sel)
}

func listProfiles(w io.Writer, reg *profiles.Registry) error {
	bw := bufio.NewWriter(w)
	for _, p := range reg.Profiles() {
		dir := ""
		if p.RTL {
			dir = " (right-to-left)"
		}
		fmt.Fprintf(bw, "%-4s %s%s\n", p.ID, p.Description, dir)
		for i, m := range p.Mappings {
			fmt.Fprintf(bw, "     %d %-14s %s\n", i, m.ID, m.Display)
		}
	}
	return bw.Flush()
}

// filterLines transliterates every input line completely.
func filterLines(r io.Reader, w io.Writer, table *translit.Table) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	writer := bufio.NewWriter(w)
	defer writer.Flush()

	m := translit.NewMatcher(table)
	for scanner.Scan() {
		m.Append(scanner.Text())
		m.Flush()
		if _, err := writer.WriteString(m.Result()); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
		m.Clear()
	}
	return scanner.Err()
}

func prompt(sel selection) string {
	return "[" + sel.String() + "] "
}

func interactive(reg *profiles.Registry, settingsPath string, want choices, sel selection) error {
	switches := make(chan selection, 1)
	if want.mapFile == "" {
		watcher, err := settings.Watch(settingsPath, 0)
		if err != nil {
			tracing.Select("translit").Infof("settings are not watched: %v", err)
		} else {
			defer watcher.Close()
			sub := watcher.Subscribe(func(s *settings.Settings) {
				next, err := resolve(reg, s, want)
				if err != nil {
					tracing.Select("translit").Errorf("settings change ignored: %v", err)
					return
				}
				select {
				case <-switches:
				default:
				}
				switches <- next
			})
			defer sub.Close()
		}
	}

	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	defer keyboard.Close()
	events, err := keyboard.GetKeys(16)
	if err != nil {
		return fmt.Errorf("read keyboard: %w", err)
	}

	host := newTerminalHost(os.Stdout, prompt(sel))
	sess := session.New(host, sel.table)
	if err := host.redraw(); err != nil {
		return err
	}
	for {
		select {
		case next := <-switches:
			if err := sess.SetTable(next.table); err != nil {
				return err
			}
			if err := host.setPrompt(prompt(next)); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return ev.Err
			}
			quit, err := handleKey(sess, host, ev)
			if err != nil {
				return err
			}
			if quit {
				_, err := io.WriteString(os.Stdout, "\r\n")
				return err
			}
		}
	}
}

func handleKey(sess *session.Session, host *terminalHost, ev keyboard.KeyEvent) (quit bool, err error) {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC, keyboard.KeyCtrlD:
		return true, sess.Finish()
	case keyboard.KeyEnter:
		if err := sess.Finish(); err != nil {
			return false, err
		}
		return false, host.newline()
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		handled, err := sess.Backspace()
		if err != nil || handled {
			return false, err
		}
		return false, host.deleteLast()
	case keyboard.KeySpace:
		return false, sess.KeyText(" ")
	}
	if ev.Rune != 0 {
		return false, sess.KeyText(string(ev.Rune))
	}
	return false, sess.Finish()
}
