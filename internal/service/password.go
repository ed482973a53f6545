package service

import "golang.org/x/crypto/bcrypt"

// Costo fijo de bcrypt para hashes de contraseña.
const bcryptCost = 10

// HashPassword deriva un hash bcrypt salteado de la contraseña en claro.
// Dos llamadas con la misma entrada producen hashes distintos.
func HashPassword(plain string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword verifica una contraseña en claro contra su hash almacenado.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
