package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Almacen-api/pkg/jwt"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(u *entity.User) error {
	for _, existing := range f.users {
		if existing.CompanyID == u.CompanyID && existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmailAndCompany(email, companyID string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.CompanyID == companyID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[string]*entity.Company)}
}

func (f *fakeCompanyRepo) Create(c *entity.Company) error {
	cp := *c
	f.companies[c.ID] = &cp
	return nil
}

func (f *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

const testSecret = "secret-para-tests-de-auth"

func newUseCase() (*auth.AuthUseCase, *fakeUserRepo, *fakeCompanyRepo) {
	users := newFakeUserRepo()
	companies := newFakeCompanyRepo()
	uc := auth.NewAuthUseCase(users, companies, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "almacen-api-test",
	})
	return uc, users, companies
}

// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterCompany_CreaTenantActivo(t *testing.T) {
	uc, _, companies := newUseCase()

	out, err := uc.RegisterCompany(dto.RegisterCompanyRequest{Name: "Ferretería La Tuerca", TaxID: "900123456"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, entity.CompanyStatusActive, out.Status)

	stored, err := companies.GetByID(out.ID)
	require.NoError(t, err)
	require.NotNil(t, stored, "la empresa debe quedar persistida")
	assert.Equal(t, "900123456", stored.TaxID)
}

func TestRegisterCompany_SinNombre_Rechaza(t *testing.T) {
	uc, _, _ := newUseCase()

	_, err := uc.RegisterCompany(dto.RegisterCompanyRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterUser_LuegoLogin_EmiteTokenConRol(t *testing.T) {
	uc, _, _ := newUseCase()

	company, err := uc.RegisterCompany(dto.RegisterCompanyRequest{Name: "Ferretería"})
	require.NoError(t, err)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email:     "bodega@ferre.co",
		Password:  "contraseña-larga",
		CompanyID: company.ID,
		Role:      entity.RoleBodeguero,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBodeguero, user.Role)

	out, err := uc.Login(dto.LoginRequest{Email: "bodega@ferre.co", Password: "contraseña-larga", CompanyID: company.ID})
	require.NoError(t, err)
	require.NotEmpty(t, out.Token)

	userID, companyID, role, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, company.ID, companyID)
	assert.Equal(t, entity.RoleBodeguero, role)
}

func TestRegisterUser_EmpresaInexistente_Rechaza(t *testing.T) {
	uc, _, _ := newUseCase()

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email:     "x@y.co",
		Password:  "contraseña-larga",
		CompanyID: "no-existe",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterUser_EmailDuplicado_Rechaza(t *testing.T) {
	uc, _, _ := newUseCase()

	company, err := uc.RegisterCompany(dto.RegisterCompanyRequest{Name: "Ferretería"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "uno@ferre.co", Password: "contraseña-larga", CompanyID: company.ID})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "uno@ferre.co", Password: "otra-contraseña", CompanyID: company.ID})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_PasswordIncorrecta_Unauthorized(t *testing.T) {
	uc, _, _ := newUseCase()

	company, err := uc.RegisterCompany(dto.RegisterCompanyRequest{Name: "Ferretería"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "uno@ferre.co", Password: "contraseña-larga", CompanyID: company.ID})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "uno@ferre.co", Password: "equivocada", CompanyID: company.ID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh_UsuarioSuspendido_Forbidden(t *testing.T) {
	uc, users, _ := newUseCase()

	company, err := uc.RegisterCompany(dto.RegisterCompanyRequest{Name: "Ferretería"})
	require.NoError(t, err)
	user, err := uc.RegisterUser(dto.RegisterRequest{Email: "uno@ferre.co", Password: "contraseña-larga", CompanyID: company.ID})
	require.NoError(t, err)

	users.users[user.ID].Status = entity.UserStatusSuspended

	_, err = uc.Refresh(user.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
