package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/matst80/slask-list/pkg/browser"
	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/listsync"
	"github.com/matst80/slask-list/pkg/messaging"
	"github.com/matst80/slask-list/pkg/params"
	"github.com/matst80/slask-list/pkg/types"
)

var errNoList = errors.New("no list on this page")
var errNoFilter = errors.New("no filter form on this page")

const help = `commands:
  open <url>                 load a page
  click <selector>           click an element
  set <selector> [value...]  write a form field
  change <selector> [value...] write a form field and dispatch change
  submit <selector>          submit a form
  update <url>               request a list update
  filter | reset             filter or reset the filter form
  back | forward             traverse the history
  show [html]                print the list
  url | state | help | quit
selectors containing spaces are quoted with single quotes`

// app is the list client bound to the document currently shown in the window.
type app struct {
	win    *browser.Window
	cfg    listsync.Config
	out    io.Writer
	bridge *messaging.Bridge

	controller *listsync.ListController
	filter     *listsync.FilterForm
}

func newApp(win *browser.Window, cfg listsync.Config, out io.Writer) *app {
	return &app{win: win, cfg: cfg, out: out}
}

// setup binds the list controller and filter form of a freshly loaded document.
func (a *app) setup() {
	a.controller = nil
	a.filter = nil
	if a.bridge != nil {
		a.bridge.Attach(a.win.Bus())
	}

	registry := params.NewRegistry(a.win)
	if a.cfg.QueryParameterNames != nil {
		if err := registry.Set(*a.cfg.QueryParameterNames); err != nil {
			log.Printf("invalid query parameter names: %v", err)
			return
		}
	} else if err := registry.Load(); err != nil {
		log.Printf("failed to read query parameter names: %v", err)
	}

	if a.cfg.FilterForm != "" {
		ff, err := listsync.NewFilterForm(a.win, registry, dom.Selector(a.cfg.FilterForm), a.cfg.Filter)
		if err != nil {
			log.Printf("filter form disabled: %v", err)
		} else {
			a.filter = ff
		}
	}

	c, err := listsync.NewListController(a.win, a.win, a.win, dom.Selector(a.cfg.Container), a.filter, a.cfg.List)
	if err != nil {
		log.Printf("no list on %s: %v", a.win.Location(), err)
		return
	}
	_ = c.AddUpdateListener(func(container *goquery.Selection) {
		fmt.Fprintf(a.out, "list updated: %s\n", a.win.Location())
	})
	_ = c.AddUpdateFailureListener(func(f *types.Failure, requestURL string) {
		fmt.Fprintf(a.out, "list update %s failed: %v\n", requestURL, f)
	})
	a.controller = c
}

// exec runs one command line and reports whether the client should quit.
func (a *app) exec(ctx context.Context, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return false
	}
	if len(args) == 0 {
		return false
	}
	name, args := args[0], args[1:]
	if name == "quit" || name == "exit" {
		return true
	}
	if err := a.run(ctx, name, args); err != nil {
		fmt.Fprintf(a.out, "%s: %v\n", name, err)
	}
	return false
}

func (a *app) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "help":
		fmt.Fprintln(a.out, help)
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <url>")
		}
		return a.win.Open(ctx, args[0])
	case "click", "submit":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <selector>", name)
		}
		if name == "click" {
			return a.win.Click(ctx, args[0])
		}
		return a.win.Submit(ctx, args[0])
	case "set", "change":
		if len(args) == 0 {
			return fmt.Errorf("usage: %s <selector> [value...]", name)
		}
		if name == "set" {
			return a.win.Set(args[0], args[1:]...)
		}
		return a.win.Change(args[0], args[1:]...)
	case "update":
		if len(args) != 1 {
			return errors.New("usage: update <url>")
		}
		a.win.Bus().Publish(events.ListUpdate, args[0])
	case "filter", "reset":
		if a.filter == nil {
			return errNoFilter
		}
		if name == "filter" {
			return a.filter.Filter()
		}
		return a.filter.Reset()
	case "back", "forward":
		move := a.win.Back
		if name == "forward" {
			move = a.win.Forward
		}
		moved, err := move(ctx)
		if err != nil {
			return err
		}
		if !moved {
			fmt.Fprintf(a.out, "no %s entry\n", name)
		}
	case "show":
		if a.controller == nil {
			return errNoList
		}
		container := a.controller.Container()
		if len(args) > 0 && args[0] == "html" {
			fmt.Fprintln(a.out, a.win.Document().HTML(container))
			return nil
		}
		fmt.Fprintln(a.out, strings.Join(strings.Fields(container.Text()), " "))
	case "url":
		fmt.Fprintln(a.out, a.win.Location())
	case "state":
		if a.controller == nil {
			return errNoList
		}
		fmt.Fprintf(a.out, "%s, %d pending, history %d/%d\n",
			a.controller.State(), a.win.Pending(), a.win.Stack().Index()+1, a.win.Stack().Len())
	default:
		return errors.New("unknown command, try help")
	}
	return nil
}

// splitArgs splits a command line on spaces. Single quotes group words.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	quoted, inArg := false, false
	for _, r := range line {
		switch {
		case r == '\'':
			quoted = !quoted
			inArg = true
		case !quoted && (r == ' ' || r == '\t'):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
