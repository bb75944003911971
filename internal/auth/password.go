package auth

import (
	"github.com/alexedwards/argon2id"
)

// Parâmetros do Argon2id; ficam codificados dentro do próprio hash, então
// podem evoluir sem invalidar senhas já gravadas.
var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id da senha.
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, argonParams)
}

// Verify compara a senha com o hash gravado.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}
