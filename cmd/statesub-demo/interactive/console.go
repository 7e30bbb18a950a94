// Package interactive provides the interactive command-line interface
// for statesub-demo.
package interactive

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	gometrics "github.com/hashicorp/go-metrics"

	"github.com/statesub/statesub-go/pkg/config"
	"github.com/statesub/statesub-go/pkg/metrics"
	"github.com/statesub/statesub-go/pkg/subscription"
)

// Store and value names the demo scenarios operate on.
const (
	MounterStore = "mounter"
	TextValue    = "text"
)

// FakeData is written into the mounter store by the fetch command.
var FakeData = []any{
	map[string]any{"name": "Minh", "email": "phanminh65@gmail.com"},
	map[string]any{"name": "Tester 1", "email": "tester1@gmail.com"},
}

// Console handles interactive mode for statesub-demo.
type Console struct {
	stores map[string]*subscription.Store
	values map[string]*subscription.Value[any]
	sink   *gometrics.InmemSink

	rl  *readline.Instance
	out io.Writer
	mu  sync.Mutex // serializes writes to out

	watchMu sync.Mutex
	watches map[uint64]watch

	// Mounted fetch scope, see cmdFetch.
	mount       *subscription.Binding
	mountCancel context.CancelFunc
}

type watch struct {
	container string
	keys      []string
	sub       *subscription.Subscription
}

// New creates a new interactive console over the given containers. sink
// may be nil, in which case the metrics command reports nothing.
func New(c *config.Containers, sink *gometrics.InmemSink) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "statesub> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	con := newConsole(c, sink, rl.Stdout())
	con.rl = rl
	return con, nil
}

func newConsole(c *config.Containers, sink *gometrics.InmemSink, out io.Writer) *Console {
	return &Console{
		stores:  c.Stores,
		values:  c.Values,
		sink:    sink,
		out:     out,
		watches: make(map[uint64]watch),
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			c.printf("Exiting...\n")
			cancel()
			return
		}

		if quit := c.Exec(ctx, line); quit {
			c.printf("Exiting...\n")
			cancel()
			return
		}
	}
}

// Exec runs a single command line and reports whether the console should
// exit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "list", "ls":
		c.cmdList()

	case "get", "g":
		c.cmdGet(args)

	case "set", "s":
		c.cmdSet(args)

	case "inc", "+":
		c.cmdInc(args, 1)

	case "dec", "-":
		c.cmdInc(args, -1)

	case "watch", "w":
		c.cmdWatch(args)

	case "unwatch", "uw":
		c.cmdUnwatch(args)

	case "text", "t":
		c.cmdText(args)

	case "fetch":
		c.cmdFetch(ctx, args)

	case "unmount":
		c.cmdUnmount()

	case "metrics", "m":
		c.cmdMetrics()

	case "quit", "exit", "q":
		return true

	default:
		c.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

// Close removes every listener the console registered.
func (c *Console) Close() {
	c.watchMu.Lock()
	for id, w := range c.watches {
		w.sub.Unsubscribe()
		delete(c.watches, id)
	}
	c.watchMu.Unlock()
	c.cmdUnmountQuiet()
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) printHelp() {
	c.printf(`
statesub Demo Commands:
  State:
    list                       - List stores and values
    get <store> [key]          - Show a store's state (or one key)
    set <store> <key> <val>    - Set a key (int, float, bool or string)
    inc <store> <key> [delta]  - Increment a numeric key (default 1)
    dec <store> <key> [delta]  - Decrement a numeric key (default 1)
    text [value...]            - Show or replace the synced text

  Listeners:
    watch <name> [keys...]     - Print updates (only those touching keys)
    unwatch <id>               - Remove a watcher

  Delayed fetch:
    fetch [delay]              - Mount and fetch fake data after delay (default 5s)
    unmount                    - Leave the mounted scope before the fetch completes

  Other:
    metrics                    - Show container metrics
    help                       - Show this help
    quit                       - Exit
`)
}

func (c *Console) store(name string) (*subscription.Store, bool) {
	s, ok := c.stores[name]
	if !ok {
		c.printf("Unknown store: %s\n", name)
	}
	return s, ok
}

func (c *Console) cmdList() {
	names := make([]string, 0, len(c.stores))
	for name := range c.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		s := c.stores[name]
		c.printf("store %-10s keys=%d listeners=%d\n", name, s.Len(), s.ListenerCount())
	}

	names = names[:0]
	for name := range c.values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		v := c.values[name]
		c.printf("value %-10s %s listeners=%d\n", name, formatValue(v.Get()), v.ListenerCount())
	}
}

func (c *Console) cmdGet(args []string) {
	if len(args) < 1 {
		c.printf("Usage: get <store> [key]\n")
		return
	}
	s, ok := c.store(args[0])
	if !ok {
		return
	}
	if len(args) == 1 {
		c.printf("%s = %s\n", args[0], formatValue(s.Snapshot()))
		return
	}
	v, ok := s.Get(args[1])
	if !ok {
		c.printf("%s.%s is not set\n", args[0], args[1])
		return
	}
	c.printf("%s.%s = %s\n", args[0], args[1], formatValue(v))
}

func (c *Console) cmdSet(args []string) {
	if len(args) < 3 {
		c.printf("Usage: set <store> <key> <value>\n")
		return
	}
	s, ok := c.store(args[0])
	if !ok {
		return
	}
	val := parseValue(strings.Join(args[2:], " "))
	s.SetState(subscription.Map{args[1]: val}, func(subscription.Map) {
		c.printf("%s = %s\n", args[0], formatValue(s.Snapshot()))
	})
}

func (c *Console) cmdInc(args []string, sign int) {
	if len(args) < 2 {
		c.printf("Usage: inc|dec <store> <key> [delta]\n")
		return
	}
	s, ok := c.store(args[0])
	if !ok {
		return
	}
	key := args[1]

	var delta any = 1
	if len(args) > 2 {
		delta = parseValue(args[2])
	}
	if sign < 0 {
		neg, err := negate(delta)
		if err != nil {
			c.printf("Error: %v\n", err)
			return
		}
		delta = neg
	}

	if cur, _ := s.Get(key); cur != nil {
		if _, err := addNumber(cur, delta); err != nil {
			c.printf("Error: %v\n", err)
			return
		}
	}

	s.Update(func(state subscription.Map) subscription.Map {
		next, err := addNumber(state[key], delta)
		if err != nil {
			// Changed type between the check and the update; leave it.
			next = state[key]
		}
		return subscription.Map{key: next}
	}, func(subscription.Map) {
		v, _ := s.Get(key)
		c.printf("%s.%s = %s\n", args[0], key, formatValue(v))
	})
}

func (c *Console) cmdWatch(args []string) {
	if len(args) < 1 {
		c.printf("Usage: watch <name> [keys...]\n")
		return
	}
	name := args[0]
	keys := splitKeys(args[1:])

	var sub *subscription.Subscription
	if s, ok := c.stores[name]; ok {
		sub = s.SubscribeKeys(keys, func(update subscription.Map) {
			c.printf("[watch] %s <- %s\n", name, formatValue(update))
		})
	} else if v, ok := c.values[name]; ok {
		if len(keys) > 0 {
			c.printf("Values have no keys; watching all updates of %s\n", name)
			keys = nil
		}
		sub = v.Subscribe(func(val any) {
			c.printf("[watch] %s <- %s\n", name, formatValue(val))
		})
	} else {
		c.printf("Unknown store or value: %s\n", name)
		return
	}

	c.watchMu.Lock()
	c.watches[sub.ID] = watch{container: name, keys: keys, sub: sub}
	c.watchMu.Unlock()

	if len(keys) == 0 {
		c.printf("Watch %d on %s (all updates)\n", sub.ID, name)
	} else {
		c.printf("Watch %d on %s (keys: %s)\n", sub.ID, name, strings.Join(keys, ", "))
	}
}

func (c *Console) cmdUnwatch(args []string) {
	if len(args) < 1 {
		c.watchMu.Lock()
		ids := make([]uint64, 0, len(c.watches))
		for id := range c.watches {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		c.watchMu.Unlock()

		if len(ids) == 0 {
			c.printf("No active watches\n")
			return
		}
		c.printf("Usage: unwatch <id>\nActive watches:\n")
		for _, id := range ids {
			c.watchMu.Lock()
			w := c.watches[id]
			c.watchMu.Unlock()
			c.printf("  %d  %s %s\n", id, w.container, strings.Join(w.keys, ","))
		}
		return
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		c.printf("Invalid watch id: %s\n", args[0])
		return
	}

	c.watchMu.Lock()
	w, ok := c.watches[id]
	delete(c.watches, id)
	c.watchMu.Unlock()

	if !ok || !w.sub.Unsubscribe() {
		c.printf("No watch with id %d\n", id)
		return
	}
	c.printf("Removed watch %d on %s\n", id, w.container)
}

func (c *Console) cmdText(args []string) {
	v, ok := c.values[TextValue]
	if !ok {
		c.printf("No %q value configured\n", TextValue)
		return
	}
	if len(args) == 0 {
		c.printf("text = %s\n", formatValue(v.Get()))
		return
	}
	v.Set(strings.Join(args, " "))
}

// cmdFetch mounts a scope bound to the mounter store and, after the delay,
// writes FakeData into it. Unmounting before the delay elapses stops the
// scope's notifications, but the write and its completion callback still
// happen.
func (c *Console) cmdFetch(ctx context.Context, args []string) {
	s, ok := c.store(MounterStore)
	if !ok {
		return
	}

	delay := 5 * time.Second
	if len(args) > 0 {
		d, err := parseDelay(args[0])
		if err != nil {
			c.printf("Error: %v\n", err)
			return
		}
		delay = d
	}

	c.cmdUnmountQuiet()

	scope, cancel := context.WithCancel(ctx)
	b := subscription.Bind(scope, s)

	c.watchMu.Lock()
	c.mount, c.mountCancel = b, cancel
	c.watchMu.Unlock()

	b.SetState(subscription.Map{"display": true})
	c.printf("fetching... it will stop update if the scope is unmounted but the state will still be changed\n")

	go c.render(b)

	time.AfterFunc(delay, func() {
		b.SetState(subscription.Map{"data": FakeData}, func(subscription.Map) {
			c.printf("fetch data done... %s\n", formatValue(b.State()))
		})
	})
}

// render prints the mounted data each time the binding signals a change,
// until the scope ends.
func (c *Console) render(b *subscription.Binding) {
	for {
		select {
		case <-b.Done():
			return
		case <-b.Changes():
			data, _ := b.Get("data")
			c.printf("[mounted] data = %s\n", formatValue(data))
		}
	}
}

func (c *Console) cmdUnmount() {
	if !c.cmdUnmountQuiet() {
		c.printf("Nothing mounted\n")
		return
	}
	c.printf("Unmounted\n")
}

func (c *Console) cmdUnmountQuiet() bool {
	c.watchMu.Lock()
	b, cancel := c.mount, c.mountCancel
	c.mount, c.mountCancel = nil, nil
	c.watchMu.Unlock()

	if b == nil {
		return false
	}
	cancel()
	b.Close()
	if s, ok := c.stores[MounterStore]; ok {
		s.SetState(subscription.Map{"display": false})
	}
	return true
}

func (c *Console) cmdMetrics() {
	if c.sink == nil {
		c.printf("Metrics are not enabled\n")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	metrics.WriteSummary(c.out, c.sink)
}
