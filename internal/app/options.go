package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// Option is one entry of a chip's options menu.
type Option int

const (
	OptionSetDefault Option = iota
	OptionUnsubscribe
	OptionHide
	OptionUnhide
	OptionSubscribe
)

func (o Option) String() string {
	switch o {
	case OptionSetDefault:
		return "Set as default"
	case OptionUnsubscribe:
		return "Unsubscribe"
	case OptionHide:
		return "Hide"
	case OptionUnhide:
		return "Unhide"
	case OptionSubscribe:
		return "Add subscription"
	}
	return fmt.Sprintf("Option(%d)", int(o))
}

// optionsFor lists the options offered for e. Set-as-default is left out for
// the default, and hide and unhide exclude each other.
func optionsFor(e subscription.Entry) []Option {
	if e.Synthetic {
		return []Option{OptionSubscribe}
	}
	var opts []Option
	if !e.Default {
		opts = append(opts, OptionSetDefault)
	}
	opts = append(opts, OptionUnsubscribe)
	if e.Hidden {
		opts = append(opts, OptionUnhide)
	} else {
		opts = append(opts, OptionHide)
	}
	return opts
}

const storeTimeout = 5 * time.Second

// applyOption runs o against the store.
func applyOption(subs *subscription.Manager, o Option, e subscription.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		var err error
		switch o {
		case OptionSetDefault:
			err = subs.SetAsDefault(ctx, e)
		case OptionUnsubscribe:
			err = subs.Unsubscribe(ctx, e)
		case OptionHide:
			err = subs.SetHidden(ctx, e, true)
		case OptionUnhide:
			err = subs.SetHidden(ctx, e, false)
		case OptionSubscribe:
			err = subs.Subscribe(ctx, e)
		default:
			err = fmt.Errorf("unknown option %v", o)
		}
		return SubscriptionChangedMsg{Option: o, Entry: e, Err: err}
	}
}
