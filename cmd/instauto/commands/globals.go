package commands

import (
	"context"
	"errors"
	"instauto/internal/components/serviceutil"
	"instauto/internal/components/telemetry"
	"instauto/pkg/instauto"
	"os"
	"time"
)

type globalsKeyType int

var globalsKey globalsKeyType

type globals struct {
	config    Config
	telemetry telemetry.Telemetry
	dump      telemetry.ExchangeOutput
	// set once a command has loaded the session, saved again after it ran
	client *instauto.Client
}

func setGlobals(ctx context.Context, value *globals) context.Context {
	return context.WithValue(ctx, globalsKey, value)
}

func getGlobals(ctx context.Context) *globals {
	return ctx.Value(globalsKey).(*globals)
}

func (g *globals) clientOptions() instauto.ClientOptions {
	return instauto.ClientOptions{
		Username:  g.config.Username,
		Password:  g.config.Password,
		Timeout:   time.Duration(g.config.Timeout) * time.Second,
		Telemetry: telemetry.SlogAPI{},
		Dump:      g.dump,
	}
}

// loadClient resumes the saved session, commands other than login need one.
func loadClient(ctx context.Context) *instauto.Client {
	g := getGlobals(ctx)
	client, err := instauto.NewClientFromFile(g.config.SaveFile, g.clientOptions())
	if errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("no saved session, run 'instauto login' first", err)
	}
	if err != nil {
		serviceutil.Fatal("failed to load session", err)
	}
	g.client = client
	return client
}
