// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command client talks to a running file manager server.
//
//	client [flags] <command> [args]
//
// Commands: register EMAIL PASSWORD, connect EMAIL PASSWORD, disconnect,
// me, mkdir NAME, upload PATH, ls, get ID, cat ID, publish ID,
// unpublish ID, status, stats.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/fawa-io/filemanager/pkg/client"
	"github.com/fawa-io/filemanager/pkg/fwlog"
	"github.com/fawa-io/filemanager/pkg/model"
)

var (
	server  = pflag.String("server", "http://localhost:5000", "Server base URL")
	token   = pflag.String("token", os.Getenv("FILEMANAGER_TOKEN"), "Session token (defaults to $FILEMANAGER_TOKEN)")
	parent  = pflag.String("parent", "0", "Parent folder id for mkdir, upload and ls")
	page    = pflag.Int("page", 0, "Page for ls")
	public  = pflag.Bool("public", false, "Create the node as public")
	image   = pflag.Bool("image", false, "Upload as an image")
	timeout = pflag.Duration("timeout", 30*time.Second, "Request timeout")
)

func main() {
	pflag.Parse()
	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*server, nil)
	c.SetToken(*token)

	if err := run(ctx, c, args[0], args[1:]); err != nil {
		fwlog.Fatalf("%s: %v", args[0], err)
	}
}

func need(args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) error {
	switch cmd {
	case "register":
		if err := need(args, 2); err != nil {
			return err
		}
		return show(c.Register(ctx, args[0], args[1]))
	case "connect":
		if err := need(args, 2); err != nil {
			return err
		}
		tok, err := c.Connect(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	case "disconnect":
		return c.Disconnect(ctx)
	case "me":
		return show(c.Me(ctx))
	case "mkdir":
		if err := need(args, 1); err != nil {
			return err
		}
		return show(c.Upload(ctx, client.Upload{
			Name:     args[0],
			Kind:     model.KindFolder,
			Parent:   model.ParseParent(*parent),
			IsPublic: *public,
		}))
	case "upload":
		if err := need(args, 1); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		kind := model.KindFile
		if *image {
			kind = model.KindImage
		}
		return show(c.Upload(ctx, client.Upload{
			Name:     filepath.Base(args[0]),
			Kind:     kind,
			Parent:   model.ParseParent(*parent),
			IsPublic: *public,
			Data:     data,
		}))
	case "ls":
		return show(c.List(ctx, model.ParseParent(*parent), *page))
	case "get":
		if err := need(args, 1); err != nil {
			return err
		}
		return show(c.Get(ctx, args[0]))
	case "cat":
		if err := need(args, 1); err != nil {
			return err
		}
		data, _, err := c.Data(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case "publish", "unpublish":
		if err := need(args, 1); err != nil {
			return err
		}
		return show(c.SetPublic(ctx, args[0], cmd == "publish"))
	case "status":
		return show(c.Status(ctx))
	case "stats":
		return show(c.Stats(ctx))
	default:
		return fmt.Errorf("unknown command")
	}
}

func show[T any](v T, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
