// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package lab

import "testing"

func TestNormalizeAnalyteKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "Na", want: "sodium"},
		{raw: "K+", want: "potassium"},
		{raw: "  SOD. ", want: "sodium"},
		{raw: "Hb", want: "hemoglobin"},
		{raw: "Haemoglobin", want: "hemoglobin"},
		{raw: "WBC", want: "white_blood_cells"},
		{raw: "T. Bilirubin", want: "total_bilirubin"},
		{raw: "hs-TnI", want: "troponin_i"},
		{raw: "Neut%", want: "neutrophils"},
		{raw: "Creat...", want: "creatinine"},
		{raw: "Vitamin D (25-OH)", want: "vitamin_d_25-oh"},
		{raw: "Some   New  Test", want: "some_new_test"},
		{raw: "Anti\u00a0Xa\u2009Level", want: "anti_xa_level"},
		{raw: "Sodium.\u00a0", want: "sodium"},
	}

	for _, tt := range tests {
		if got := NormalizeAnalyteKey(tt.raw); got != tt.want {
			t.Fatalf("NormalizeAnalyteKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	if got := DisplayName("white_blood_cells"); got != "White Blood Cells" {
		t.Fatalf("unexpected display name %q", got)
	}

	if got := DisplayName("sodium"); got != "Sodium" {
		t.Fatalf("unexpected display name %q", got)
	}
}
