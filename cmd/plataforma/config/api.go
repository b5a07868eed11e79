package config

import "github.com/pjecz/plataforma-web/storage"

// apiConf holds API-related configuration
type apiConf struct {
	UsuariosEnabled bool                   `yaml:"usuarios_enabled"`
	Argon2idParams  storage.Argon2idParams `yaml:"password_hashing"`
}

var defaultAPIConf = apiConf{
	UsuariosEnabled: true,
	Argon2idParams: storage.Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      64,
		SaltLen:     32,
	},
}
