/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Fri Dec 29 13:18:26 2017 mstenber
 * Last modified: Sat Oct 17 15:40:12 2026 mstenber
 * Edit time:     121 min
 *
 */

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/pkg/errors"

	"github.com/fingon/go-actree/actor"
	"github.com/fingon/go-actree/bptree"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/storage/factory"
)

var ErrUsage = errors.New("invalid usage")

type command struct {
	args  string
	run   func(ctx context.Context, c *cli, args []string) error
	nargs int
}

// cli is the state shared by the commands.
type cli struct {
	tree     *bptree.Tree[string, string]
	order    int
	parallel int
	out      io.Writer
	in       io.Reader
}

var commands = map[string]command{
	"init": {"", func(ctx context.Context, c *cli, args []string) error {
		return c.tree.InitializeTree(ctx, c.order)
	}, 0},
	"add": {"KEY VALUE [KEY VALUE ..]", func(ctx context.Context, c *cli, args []string) error {
		if len(args)%2 != 0 {
			return errors.Wrapf(ErrUsage, "odd number of arguments")
		}
		for i := 0; i < len(args); i += 2 {
			err := c.tree.Add(ctx, bptree.NewItem(args[i], args[i+1]))
			if err != nil {
				return err
			}
		}
		return nil
	}, 2},
	"get": {"KEY [KEY ..]", func(ctx context.Context, c *cli, args []string) error {
		for _, key := range args {
			value, found, err := c.tree.Get(ctx, key)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintf(c.out, "%s: not found\n", key)
				continue
			}
			fmt.Fprintf(c.out, "%s: %s\n", key, value)
		}
		return nil
	}, 1},
	"remove": {"KEY [KEY ..]", func(ctx context.Context, c *cli, args []string) error {
		for _, key := range args {
			removed, err := c.tree.Remove(ctx, key)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(c.out, "%s: not found\n", key)
			}
		}
		return nil
	}, 1},
	"dump": {"", func(ctx context.Context, c *cli, args []string) error {
		b, err := c.tree.ToJSON(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.out, "%s\n", b)
		return err
	}, 0},
	"load": {"FILE (- for stdin; lines of KEY<tab>VALUE)", func(ctx context.Context, c *cli, args []string) error {
		r := c.in
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		items, err := readItems(r)
		if err != nil {
			return err
		}
		err = c.tree.AddAll(ctx, items, c.parallel)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "loaded %d items\n", len(items))
		return nil
	}, 1},
	"check": {"", func(ctx context.Context, c *cli, args []string) error {
		err := c.tree.Check(ctx)
		if err != nil {
			return err
		}
		height, err := c.tree.Height(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "ok, height %d\n", height)
		return nil
	}, 0},
}

func readItems(r io.Reader) (items []bptree.Item[string, string], err error) {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, errors.Wrapf(ErrUsage, "line %d: no tab", line)
		}
		items = append(items, bptree.NewItem(key, value))
	}
	return items, scanner.Err()
}

func (self *cli) run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return errors.Wrapf(ErrUsage, "unknown command %q", name)
	}
	if len(args) < cmd.nargs {
		return errors.Wrapf(ErrUsage, "%s %s", name, cmd.args)
	}
	return cmd.run(ctx, self, args)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n\n%s [flags] COMMAND [ARGS]\n\nCommands:\n", os.Args[0])
	for _, name := range []string{"init", "add", "get", "remove", "dump", "load", "check"} {
		fmt.Fprintf(os.Stderr, "  %s %s\n", name, commands[name].args)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	backendp := flag.String("backend", "badger",
		fmt.Sprintf("Backend to use (possible: %v)", factory.List()))
	dir := flag.String("dir", "", "Directory of the (embedded) backend")
	address := flag.String("address", "", "Address of the (remote) backend")
	namespace := flag.String("namespace", "", "Namespace within the (remote) backend")
	password := flag.String("password", "", "Password (empty = no encryption)")
	salt := flag.String("salt", factory.DefaultSalt, "Salt")
	iterations := flag.Int("iterations", 0, "Key derivation iterations (0 = default)")
	name := flag.String("name", "default", "Name of the tree")
	order := flag.Int("order", 32, "Order of a new tree (init only)")
	parallel := flag.Int("parallel", 8, "Number of concurrent adds (load only)")
	cachesize := flag.Int("cachesize", actor.DefaultCacheSize, "Number of nodes to keep in memory")
	cpuprofile := flag.String("cpuprofile", "", "CPU profile file")

	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	beconf := storage.BackendConfiguration{Directory: *dir, Address: *address,
		Namespace: *namespace}
	conf := factory.StorageConfiguration{BackendConfiguration: beconf,
		BackendName: *backendp, Password: *password, Salt: *salt,
		Iterations: *iterations}
	st, err := factory.NewStorage(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	host := actor.Host{Storage: st, CacheSize: *cachesize}.Init()
	defer host.Close()
	tree, err := bptree.OpenNamedTree[string, string](ctx, host, *name)
	if err != nil {
		log.Panic(err)
	}
	c := &cli{tree: tree, order: *order, parallel: *parallel,
		out: os.Stdout, in: os.Stdin}
	err = c.run(ctx, flag.Arg(0), flag.Args()[1:])
	if errors.Is(err, ErrUsage) {
		log.Print(err)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Print(err)
		// deferred closes do not run after os.Exit
		host.Close()
		st.Close()
		os.Exit(1)
	}
}
