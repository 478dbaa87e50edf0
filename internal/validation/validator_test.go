// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	ClientIP string  `validate:"required,ip"`
	Limit    int     `validate:"min=1,max=100"`
	Latitude float64 `validate:"omitempty,latitude"`
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := sampleRequest{ClientIP: "203.0.113.7", Limit: 10, Latitude: 52.5}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStructMissingRequired(t *testing.T) {
	t.Parallel()

	req := sampleRequest{Limit: 10}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "ClientIP is required") {
		t.Errorf("Error() = %q, want ClientIP required message", err.Error())
	}
}

func TestValidateStructCollectsAllFields(t *testing.T) {
	t.Parallel()

	req := sampleRequest{ClientIP: "not-an-ip", Limit: 0, Latitude: 200}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Fields) != 3 {
		t.Fatalf("got %d field errors, want 3: %v", len(err.Fields), err)
	}
}

func TestValidatorSingleton(t *testing.T) {
	t.Parallel()

	if Validator() != Validator() {
		t.Error("Validator() must return the same instance")
	}
}
