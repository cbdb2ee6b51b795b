package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrInvalidSignature — подпись отсутствует, имеет неверный формат
// или не совпадает с вычисленной.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySignature проверяет HMAC-SHA256 подпись сырого тела запроса.
//
// signature — hex-строка из заголовка (64 символа). Сравнение
// постоянного времени; любое отклонение формата отклоняется до
// вычисления HMAC.
func VerifySignature(secret, body []byte, signature string) error {
	provided, err := hex.DecodeString(signature)
	if err != nil || len(provided) != sha256.Size {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return ErrInvalidSignature
	}
	return nil
}
