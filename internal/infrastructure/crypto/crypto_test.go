package crypto

import (
	"strings"
	"testing"
)

const testKey = "01234567890123456789012345678901" // 32 bytes for AES-256

func TestNewEncryptor_ValidKey(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}
	if enc == nil {
		t.Fatal("NewEncryptor() returned nil")
	}
}

func TestNewEncryptor_InvalidKeyLength(t *testing.T) {
	_, err := NewEncryptor("too-short")
	if err == nil {
		t.Error("NewEncryptor() expected error for short key, got nil")
	}
	if err != ErrInvalidKey {
		t.Errorf("NewEncryptor() error = %v, want %v", err, ErrInvalidKey)
	}
}

func TestNewEncryptor_EmptyKey(t *testing.T) {
	_, err := NewEncryptor("")
	if err == nil {
		t.Error("NewEncryptor() expected error for empty key, got nil")
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	plaintext := "access-sandbox-1b2f3a99"
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}

	if ciphertext == plaintext {
		t.Error("Encrypt() returned plaintext")
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("Decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestEncrypt_EmptyString(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	ciphertext, err := enc.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if ciphertext != "" {
		t.Errorf("Encrypt(\"\") = %q, want empty", ciphertext)
	}

	decrypted, err := enc.Decrypt("")
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	if decrypted != "" {
		t.Errorf("Decrypt(\"\") = %q, want empty", decrypted)
	}
}

func TestEncrypt_Nondeterministic(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	first, _ := enc.Encrypt("same input")
	second, _ := enc.Encrypt("same input")
	if first == second {
		t.Error("Encrypt() produced identical ciphertexts for two calls")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	ciphertext, _ := enc.Encrypt("payload")
	tampered := strings.Replace(ciphertext, string(ciphertext[10]), "A", 1)
	if tampered == ciphertext {
		tampered = strings.Replace(ciphertext, string(ciphertext[10]), "B", 1)
	}

	if _, err := enc.Decrypt(tampered); err == nil {
		t.Error("Decrypt() accepted tampered ciphertext")
	}
}

func TestShareableID_Roundtrip(t *testing.T) {
	id := "Zl8GWV1jqdTgjoKnxQn1HBxxVBanm5FxZpnQk"

	encoded := ShareableID(id)
	if encoded == id {
		t.Error("ShareableID() returned input unchanged")
	}

	decoded, err := DecodeShareableID(encoded)
	if err != nil {
		t.Fatalf("DecodeShareableID() failed: %v", err)
	}
	if decoded != id {
		t.Errorf("DecodeShareableID() = %q, want %q", decoded, id)
	}
}

func TestDecodeShareableID_Invalid(t *testing.T) {
	if _, err := DecodeShareableID("!!not-base64!!"); err == nil {
		t.Error("DecodeShareableID() accepted invalid input")
	}
}
