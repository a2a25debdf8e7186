package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"instauto/internal/components/serviceutil"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// printResponse writes the body as indented json, or as is with --raw or
// when it is not json.
func printResponse(res *resty.Response) {
	body := res.Body()
	if !res.IsSuccess() {
		fmt.Fprintf(os.Stderr, "%s\n", res.Status())
	}
	if rawOutput {
		os.Stdout.Write(body)
		fmt.Println()
		return
	}
	var out bytes.Buffer
	if json.Indent(&out, body, "", "  ") != nil {
		os.Stdout.Write(body)
		fmt.Println()
		return
	}
	out.WriteTo(os.Stdout)
	fmt.Println()
}

// printOr renders the decoded body with render, falling back to
// printResponse for --raw, rejections and unexpected shapes.
func printOr[T any](res *resty.Response, render func(T)) {
	if rawOutput || !res.IsSuccess() {
		printResponse(res)
		return
	}
	var decoded T
	if json.Unmarshal(res.Body(), &decoded) != nil {
		printResponse(res)
		return
	}
	render(decoded)
}

func must(res *resty.Response, err error) *resty.Response {
	if err != nil {
		serviceutil.Fatal("request failed", err)
	}
	return res
}

type userSummary struct {
	PK        json.Number `json:"pk"`
	Username  string      `json:"username"`
	FullName  string      `json:"full_name"`
	IsPrivate bool        `json:"is_private"`
}

type userList struct {
	Users     []userSummary `json:"users"`
	NextMaxID string        `json:"next_max_id"`
}

func renderUsers(list userList) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Username", "Name", "Private"})
	for _, u := range list.Users {
		t.AppendRow(table.Row{u.PK, u.Username, u.FullName, u.IsPrivate})
	}
	if list.NextMaxID != "" {
		t.AppendFooter(table.Row{"next", list.NextMaxID})
	}
	t.Render()
}
