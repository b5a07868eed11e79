// Package acuse issues signed acknowledgement receipts for submitted
// agreement lists.
package acuse

import (
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"

	"github.com/pjecz/plataforma-web/storage/model"
)

// Acuse is the content of a receipt
type Acuse struct {
	IDHashed  string    `json:"id_hashed"`
	Autoridad string    `json:"autoridad"`
	Fecha     string    `json:"fecha"`
	Archivo   string    `json:"archivo"`
	URL       string    `json:"url"`
	Emitido   time.Time `json:"emitido"`
}

// Signer signs and verifies receipts with HS256
type Signer struct {
	key    []byte
	issuer string
}

// NewSigner returns a Signer using secret as the HMAC key
func NewSigner(secret, issuer string) (*Signer, error) {
	if len(secret) < 16 {
		return nil, errors.New("acuse: secret must be at least 16 bytes")
	}
	return &Signer{
		key:    []byte(secret),
		issuer: issuer,
	}, nil
}

// Sign returns the receipt token of lista, identified publicly by idHashed.
// The Autoridad association must be loaded.
func (s *Signer) Sign(lista model.ListaDeAcuerdo, idHashed string, now time.Time) (string, error) {
	clave := ""
	if lista.Autoridad != nil {
		clave = lista.Autoridad.Clave
	}
	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(idHashed).
		IssuedAt(now).
		Claim("autoridad", clave).
		Claim("fecha", lista.Fecha.Format(time.DateOnly)).
		Claim("archivo", lista.Archivo).
		Claim("url", lista.URL).
		Build()
	if err != nil {
		return "", errors.Wrap(err, "acuse: could not build token")
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", errors.Wrap(err, "acuse: could not sign token")
	}
	return string(signed), nil
}

// Verify checks the signature of token and returns its content
func (s *Signer) Verify(token string) (*Acuse, error) {
	tok, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.HS256(), s.key), jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, errors.Wrap(err, "acuse: invalid token")
	}
	a := &Acuse{}
	a.IDHashed, _ = tok.Subject()
	a.Emitido, _ = tok.IssuedAt()
	for name, dst := range map[string]*string{
		"autoridad": &a.Autoridad,
		"fecha":     &a.Fecha,
		"archivo":   &a.Archivo,
		"url":       &a.URL,
	} {
		if err = tok.Get(name, dst); err != nil {
			return nil, errors.Wrapf(err, "acuse: missing claim '%s'", name)
		}
	}
	return a, nil
}
