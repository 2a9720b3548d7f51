package main

import "testing"

func TestIngestOptionsOnlyChangedFlagsOverride(t *testing.T) {
	opts, err := ingestOptions(ingestCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.TZOffsetMinutes != nil || opts.OpenAsOpening != nil || opts.DefaultShippingDate != nil {
		t.Errorf("unset flags leaked into options: %+v", opts)
	}

	f := ingestCmd.Flags()
	for name, value := range map[string]string{
		"tz-offset":             "0",
		"open-as-opening":       "false",
		"default-shipping-date": "2024-03-05",
		"mode":                  "inc",
	} {
		if err := f.Set(name, value); err != nil {
			t.Fatal(err)
		}
	}
	opts, err = ingestOptions(ingestCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.TZOffsetMinutes == nil || *opts.TZOffsetMinutes != 0 {
		t.Errorf("tz offset = %v, want 0", opts.TZOffsetMinutes)
	}
	if opts.OpenAsOpening == nil || *opts.OpenAsOpening {
		t.Errorf("openAsOpening = %v, want false", opts.OpenAsOpening)
	}
	if opts.DefaultShippingDate == nil || opts.DefaultShippingDate.Day() != 5 {
		t.Errorf("default shipping date = %v", opts.DefaultShippingDate)
	}
	if opts.Mode != "INC" {
		t.Errorf("mode = %q, want INC", opts.Mode)
	}

	if err := f.Set("default-shipping-date", "05/03/2024"); err != nil {
		t.Fatal(err)
	}
	if _, err := ingestOptions(ingestCmd); err == nil {
		t.Error("expected error for malformed shipping date")
	}
}

func TestIngestRunnersCoverResources(t *testing.T) {
	for _, r := range []string{"orders", "deliveries", "shipments", "stocks", "shortages", "productions"} {
		if _, ok := ingestRunners[r]; !ok {
			t.Errorf("no runner for %s", r)
		}
	}
}
