package line

import "testing"

func TestValidateSignature_Valid(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	sig := Sign(secret, body)
	if !ValidateSignature(secret, body, sig) {
		t.Error("valid signature should verify")
	}
}

func TestValidateSignature_MutatedBody(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[{"type":"message"}]}`)
	sig := Sign(secret, body)

	// Flip one byte and the signature must no longer match.
	mutated := append([]byte(nil), body...)
	mutated[len(mutated)-2] ^= 0x01

	if ValidateSignature(secret, mutated, sig) {
		t.Error("mutated body should not verify")
	}
}

func TestValidateSignature_WrongSecret(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := Sign("secret-a", body)
	if ValidateSignature("secret-b", body, sig) {
		t.Error("signature from another secret should not verify")
	}
}

func TestValidateSignature_EmptySignature(t *testing.T) {
	if ValidateSignature("secret", []byte("body"), "") {
		t.Error("empty signature should not verify")
	}
}

func TestValidateSignature_EmptySecret(t *testing.T) {
	body := []byte("body")
	if ValidateSignature("", body, Sign("", body)) {
		t.Error("empty secret should never verify")
	}
}

func TestValidateSignature_Garbage(t *testing.T) {
	if ValidateSignature("secret", []byte("body"), "not base64 at all") {
		t.Error("garbage signature should not verify")
	}
}
