package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pjecz/plataforma-web/storage/model"
)

// UsuariosStorage returns a UsuariosStorage
func (s *Storage) UsuariosStorage() *UsuariosStorage {
	return &UsuariosStorage{db: s.db, params: s.userParams}
}

// UsuariosStorage implements model.UsuariosStore using GORM. Returned users
// never carry their password hash.
type UsuariosStorage struct {
	db     *gorm.DB
	params Argon2idParams
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UsuariosStorage) byEmail(email string) (*model.Usuario, error) {
	var u model.Usuario
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, notFoundOr(err, "usuario not found: %s", email)
	}
	return &u, nil
}

func (s *UsuariosStorage) hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("la contraseña no puede estar vacía")
	}
	h, err := newPHCHash(password, s.params)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Count returns the number of users present in the store
func (s *UsuariosStorage) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.Usuario{}).Count(&count).Error
	return count, errors.Wrap(err, "usuarios: count failed")
}

// List returns all users ordered by email
func (s *UsuariosStorage) List() ([]model.Usuario, error) {
	var users []model.Usuario
	if err := s.db.Omit("password_hash").Order("email").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "usuarios: list failed")
	}
	return users, nil
}

// Get returns a user by email
func (s *UsuariosStorage) Get(email string) (*model.Usuario, error) {
	u, err := s.byEmail(email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Create creates a user with an Argon2id-hashed password
func (s *UsuariosStorage) Create(form model.UsuarioForm) (*model.Usuario, error) {
	email := normalizeEmail(form.Email)
	if email == "" || form.Password == nil {
		return nil, errors.New("el email y la contraseña son obligatorios")
	}
	var existing int64
	if err := s.db.Model(&model.Usuario{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	if existing > 0 {
		return nil, model.AlreadyExistsErrorFmt("usuario already exists: %s", email)
	}
	hash, err := s.hash(*form.Password)
	if err != nil {
		return nil, err
	}
	u := model.Usuario{
		Email:        email,
		PasswordHash: hash,
		AutoridadID:  form.AutoridadID,
		Permisos:     datatypes.NewJSONType(form.Permisos),
	}
	if form.Nombres != nil {
		u.Nombres = *form.Nombres
	}
	if form.Disabled != nil {
		u.Disabled = *form.Disabled
	}
	if err = s.db.Create(&u).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("usuario already exists: %s", email)
		}
		return nil, errors.Wrap(err, "usuarios: create failed")
	}
	u.PasswordHash = ""
	return &u, nil
}

// Update changes the fields set in form
func (s *UsuariosStorage) Update(email string, form model.UsuarioForm) (*model.Usuario, error) {
	u, err := s.byEmail(email)
	if err != nil {
		return nil, err
	}
	if form.Nombres != nil {
		u.Nombres = *form.Nombres
	}
	if form.AutoridadID != nil {
		u.AutoridadID = form.AutoridadID
	}
	if form.Permisos != nil {
		u.Permisos = datatypes.NewJSONType(form.Permisos)
	}
	if form.Disabled != nil {
		u.Disabled = *form.Disabled
	}
	if form.Password != nil {
		if u.PasswordHash, err = s.hash(*form.Password); err != nil {
			return nil, err
		}
	}
	if err = s.db.Omit("Autoridad").Save(u).Error; err != nil {
		return nil, errors.Wrap(err, "usuarios: update failed")
	}
	u.PasswordHash = ""
	return u, nil
}

// Delete deletes a user by email
func (s *UsuariosStorage) Delete(email string) error {
	res := s.db.Where("email = ?", normalizeEmail(email)).Delete(&model.Usuario{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "usuarios: delete failed")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundErrorFmt("usuario not found: %s", email)
	}
	return nil
}

// Authenticate checks an email/password pair. A hash made with other
// parameters than the configured ones is replaced on success.
func (s *UsuariosStorage) Authenticate(email, password string) (*model.Usuario, error) {
	u, err := s.byEmail(email)
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, errors.New("usuario deshabilitado")
	}
	stored, err := parsePHCHash(u.PasswordHash)
	if err != nil || !stored.matches(password) {
		return nil, errors.New("credenciales incorrectas")
	}
	if s.params.Time != 0 && stored.outdated(s.params) {
		if rehashed, err := s.hash(password); err == nil {
			_ = s.db.Model(&model.Usuario{}).Where("id = ?", u.ID).Update("password_hash", rehashed).Error
		}
	}
	u.PasswordHash = ""
	return u, nil
}
