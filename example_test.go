package profilehttp_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/adamwoolhether/profilehttp"
	"github.com/adamwoolhether/profilehttp/client"
	"github.com/adamwoolhether/profilehttp/dummy/backend"
	"github.com/adamwoolhether/profilehttp/notify"
	"github.com/adamwoolhether/profilehttp/profile"
)

func ExampleFactory_Create() {
	ts := httptest.NewServer(backend.New(backend.WithLogger(slog.New(slog.DiscardHandler))))
	defer ts.Close()

	f, err := profilehttp.NewFactory(
		profilehttp.WithResolver(profile.Environment{Dummy: true, DummyHost: ts.URL}),
		profilehttp.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		fmt.Println("factory error:", err)
		return
	}

	c, err := f.Create(profile.KindDefault, profile.Config{})
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	health, err := client.Fetch[backend.Health](context.Background(), c, client.Descriptor{
		Method: http.MethodGet,
		URL:    "/health",
	})
	if err != nil {
		fmt.Println("fetch error:", err)
		return
	}

	fmt.Println(health.Status)
	// Output: ok
}

func ExampleFactory_Notifier() {
	ts := httptest.NewServer(backend.New(backend.WithLogger(slog.New(slog.DiscardHandler))))
	defer ts.Close()

	slot := notify.NewSlot()
	f, err := profilehttp.NewFactory(
		profilehttp.WithResolver(profile.Environment{Dummy: true, DummyHost: ts.URL}),
		profilehttp.WithLogger(slog.New(slog.DiscardHandler)),
		profilehttp.WithNotifier(slot),
	)
	if err != nil {
		fmt.Println("factory error:", err)
		return
	}

	c, err := f.CA(profile.Config{})
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	_, err = c.Post(context.Background(), client.Descriptor{URL: "/fail?code=E2001&msg=account+locked"})
	fmt.Println(err)
	fmt.Println(slot.Load().Message)
	// Output:
	// envelope_failure E2001: account locked
	// API request failed: account locked
}
