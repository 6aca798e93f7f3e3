package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/samvad-app-kit/internal/app"
	"github.com/samvad-hq/samvad-app-kit/pkg/classnames"
	"github.com/spf13/pflag"
)

func runCN(args []string, out io.Writer) error {
	fragments := make([]any, len(args))
	for i, a := range args {
		fragments[i] = a
	}
	_, err := fmt.Fprintln(out, classnames.CN(fragments...))
	return err
}

func runToken(ctx context.Context, kit *app.Kit, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: appkit token <set TOKEN|clear|status>")
	}

	switch args[0] {
	case "set":
		if len(args) != 2 {
			return errors.New("usage: appkit token set TOKEN")
		}
		if err := kit.SetToken(ctx, args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "token stored")
		return err
	case "clear":
		if err := kit.ClearToken(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "token cleared")
		return err
	case "status":
		ok, err := kit.HasToken(ctx)
		if err != nil {
			return err
		}
		status := "no token stored"
		if ok {
			status = "token stored"
		}
		_, err = fmt.Fprintln(out, status)
		return err
	default:
		return fmt.Errorf("unknown token command %q", args[0])
	}
}

func runRequest(ctx context.Context, kit *app.Kit, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("request", pflag.ContinueOnError)
	data := fs.String("data", "", "JSON request body")
	rawHeaders := fs.StringArrayP("header", "H", nil, `extra header as "Name: value"`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: appkit request [--data JSON] [-H 'Name: value'] METHOD PATH")
	}

	headers, err := parseHeaders(*rawHeaders)
	if err != nil {
		return err
	}

	var body any
	if *data != "" {
		if !json.Valid([]byte(*data)) {
			return errors.New("--data must be valid JSON")
		}
		body = []byte(*data)
	}

	resp, err := kit.Client().Do(ctx, fs.Arg(0), fs.Arg(1), body, headers)
	if resp != nil {
		fmt.Fprintf(out, "%d\n", resp.StatusCode())
		if b := resp.Body(); len(b) > 0 {
			fmt.Fprintln(out, strings.TrimSpace(string(b)))
		}
	}
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	return nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected Name: value)", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
