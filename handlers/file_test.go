package handlers

import "testing"

func TestValidFileKey(t *testing.T) {
	valid := []string{
		"quotes/5f2b1c_1718000000.pdf",
		"rfqs/abc123_1718000000.xlsx",
		"registrations/doc_1.png",
	}
	for _, key := range valid {
		if !validFileKey(key) {
			t.Errorf("validFileKey(%q) = false, want true", key)
		}
	}

	invalid := []string{
		"",
		"quotes",
		"/quotes/a.pdf",
		"quotes//a.pdf",
		"quotes/../secrets.env",
		"invoices/a.pdf",
		"../quotes/a.pdf",
	}
	for _, key := range invalid {
		if validFileKey(key) {
			t.Errorf("validFileKey(%q) = true, want false", key)
		}
	}
}
