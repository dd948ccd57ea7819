// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestFlagsFromParams(t *testing.T) {
	type uploadParams struct {
		Type     string        `flag:"type,t" desc:"document type" default:"passport"`
		Force    bool          `flag:"force" desc:"overwrite existing"`
		Retries  int           `flag:"retries" default:"3"`
		Timeout  time.Duration `flag:"timeout" default:"30s"`
		Tags     []string      `flag:"tag"`
		Internal string        // no flag tag, not bound
	}

	var params uploadParams
	flagSet := FlagsFromParams("upload", &params)

	if err := flagSet.Parse([]string{
		"-t", "visa",
		"--force",
		"--timeout", "2m",
		"--tag", "one", "--tag", "two",
	}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if params.Type != "visa" {
		t.Errorf("Type = %q (shorthand binding)", params.Type)
	}
	if !params.Force {
		t.Error("Force not set")
	}
	if params.Retries != 3 {
		t.Errorf("Retries = %d, want default 3", params.Retries)
	}
	if params.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v", params.Timeout)
	}
	if len(params.Tags) != 2 || params.Tags[0] != "one" || params.Tags[1] != "two" {
		t.Errorf("Tags = %v", params.Tags)
	}
	if flagSet.Lookup("internal") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlagsEmbeddedStruct(t *testing.T) {
	type commonParams struct {
		BaseURL string `flag:"base-url" desc:"platform API base URL"`
	}
	type listParams struct {
		commonParams
		Status string `flag:"status"`
	}

	var params listParams
	flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags failed: %v", err)
	}

	if err := flagSet.Parse([]string{"--base-url", "https://api.example.com", "--status", "approved"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if params.BaseURL != "https://api.example.com" {
		t.Errorf("embedded BaseURL = %q", params.BaseURL)
	}
	if params.Status != "approved" {
		t.Errorf("Status = %q", params.Status)
	}
}

func TestBindFlagsRejectsBadInput(t *testing.T) {
	flagSet := pflag.NewFlagSet("x", pflag.ContinueOnError)

	if err := BindFlags(struct{}{}, flagSet); err == nil {
		t.Error("expected error for non-pointer params")
	}

	type badType struct {
		Size float64 `flag:"size"`
	}
	if err := BindFlags(&badType{}, flagSet); err == nil {
		t.Error("expected error for unsupported field type")
	}

	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault{}, flagSet); err == nil {
		t.Error("expected error for unparseable default")
	}
}
