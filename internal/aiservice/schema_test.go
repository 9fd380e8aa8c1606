package aiservice

import "testing"

func TestValidate(t *testing.T) {
	s, err := compileSchemas()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"minimal single", `{"compatibilityScore": 0.4}`, false},
		{"string skills", `{"compatibilityScore": 0.4, "matchedSkills": "go, sql", "breakdown": null}`, false},
		{"score out of range", `{"compatibilityScore": 1.4}`, true},
		{"score wrong type", `{"compatibilityScore": "high"}`, true},
		{"missing score", `{"matchPercentage": 40}`, true},
		{"not json", `compatibilityScore`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(s.single, []byte(tc.raw))
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}

	if err := validate(s.batch, []byte(`{"matches": [{"candidateId": "a", "compatibilityScore": 0.7, "rank": 1}]}`)); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if err := validate(s.batch, []byte(`{"matches": [{"compatibilityScore": 0.7}]}`)); err == nil {
		t.Fatalf("batch entries without candidateId must be rejected")
	}
}
