package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"clinic-backend/internal/mailer"
	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/storage"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"

	"github.com/rs/zerolog"
)

const resetTokenTTL = time.Hour

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	BaseURL   string
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users   UserStore
	clinics ClinicStore
	files   storage.FileStore
	mail    mailer.Sender
	cfg     AuthConfig
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(users UserStore, clinics ClinicStore, files storage.FileStore, mail mailer.Sender, cfg AuthConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		clinics: clinics,
		files:   files,
		mail:    mail,
		cfg:     cfg,
		log:     log.With().Str("service", "auth").Logger(),
		now:     time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (*LoginResult, error) {
	invalid := apperror.Unauthorized("usuário ou senha inválidos")

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, invalid
	}
	if in.FCMToken != "" && in.FCMToken != u.FCMToken {
		u.FCMToken = in.FCMToken
		if err := s.users.Save(ctx, u); err != nil {
			s.log.Warn().Err(err).Uint64("user_id", u.ID).Msg("store device token")
		}
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *models.User) (*LoginResult, error) {
	token, err := utils.GenerateToken(s.cfg.JWTSecret, s.cfg.TokenTTL, u.ID, u.Role)
	if err != nil {
		return nil, apperror.Internal("falha ao gerar token", err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Bootstrap creates the first owner of an empty installation and logs them in.
func (s *AuthService) Bootstrap(ctx context.Context, in models.BootstrapInput) (*LoginResult, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperror.Conflict("sistema já foi inicializado")
	}
	u, err := s.CreateOwner(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// CreateOwner adds an owner account unconditionally. Used by the CLI.
func (s *AuthService) CreateOwner(ctx context.Context, in models.BootstrapInput) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("falha ao gerar hash da senha", err)
	}
	u := &models.User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		Role:         models.RoleOwner,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("owner created")
	return u, nil
}

// ResolveActor builds the acting scope of a request. The affiliation comes
// from a fresh user lookup; the clinic header is honoured for owners only and
// must name an existing clinic.
func (s *AuthService) ResolveActor(ctx context.Context, userID uint64, clinicHeader string) (policy.Actor, error) {
	u, err := s.users.Get(ctx, userID)
	if apperror.Is(err, apperror.KindNotFound) {
		return policy.Actor{}, apperror.Unauthorized("usuário não encontrado")
	}
	if err != nil {
		return policy.Actor{}, err
	}

	actor := policy.Actor{
		UserID:   u.ID,
		Role:     u.Role,
		SubRole:  u.SubRole,
		ClinicID: u.ClinicID,
	}
	if h := strings.TrimSpace(clinicHeader); h != "" && u.IsOwner() {
		id, err := utils.ParseID(h)
		if err != nil {
			return policy.Actor{}, apperror.Validation("cabeçalho X-Clinic-ID inválido")
		}
		if _, err := s.clinics.Get(ctx, id); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return policy.Actor{}, apperror.Validation("clínica selecionada não existe")
			}
			return policy.Actor{}, err
		}
		actor.Selected = &id
	}

	matrix, err := s.clinics.Matrix(ctx)
	if err != nil {
		return policy.Actor{}, err
	}
	if matrix != nil {
		actor.MatrixID = ptr(matrix.ID)
	}
	return actor, nil
}

func (s *AuthService) Profile(ctx context.Context, actor policy.Actor) (*models.User, error) {
	return s.users.Get(ctx, actor.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, actor policy.Actor, in models.UpdateProfileInput) (*models.User, error) {
	u, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Internal("falha ao gerar hash da senha", err)
		}
		u.PasswordHash = hash
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadPhoto stores the picture and keeps only its path on the user.
func (s *AuthService) UploadPhoto(ctx context.Context, actor policy.Actor, filename string, r io.Reader) (*models.User, error) {
	if !storage.AllowedImage(filename) {
		return nil, apperror.Validation("formato de imagem não suportado")
	}
	u, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	path, err := s.files.Save(ctx, "photos", filename, r)
	if err != nil {
		return nil, apperror.Internal("falha ao salvar a foto", err)
	}
	old := u.PhotoPath
	u.PhotoPath = path
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	if old != "" {
		if err := s.files.Delete(ctx, old); err != nil {
			s.log.Warn().Err(err).Str("path", old).Msg("remove previous photo")
		}
	}
	return u, nil
}

// ForgotPassword never reveals whether the username exists.
func (s *AuthService) ForgotPassword(ctx context.Context, in models.ForgotPasswordInput) error {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if apperror.Is(err, apperror.KindNotFound) {
		s.log.Info().Str("username", in.Username).Msg("password reset for unknown user")
		return nil
	}
	if err != nil {
		return err
	}
	if u.Email == "" {
		s.log.Warn().Uint64("user_id", u.ID).Msg("password reset requested but user has no e-mail")
		return nil
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return apperror.Internal("falha ao gerar token", err)
	}
	expires := s.now().Add(resetTokenTTL)
	u.ResetToken = &token
	u.ResetExpires = &expires
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.BaseURL, "/"), token)
	err = s.mail.Send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "Redefinição de senha",
		Body: fmt.Sprintf("Olá, %s.\n\nPara redefinir sua senha acesse o link abaixo (válido por 1 hora):\n%s\n\n"+
			"Se você não solicitou, ignore este e-mail.\n", u.Name, link),
	})
	if err != nil {
		return apperror.Internal("falha ao enviar e-mail", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in models.ResetPasswordInput) error {
	invalid := apperror.Validation("token inválido ou expirado")

	u, err := s.users.GetByResetToken(ctx, in.Token)
	if apperror.Is(err, apperror.KindNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}

	expired := u.ResetExpires == nil || s.now().After(*u.ResetExpires)
	u.ResetToken = nil
	u.ResetExpires = nil
	if expired {
		if err := s.users.Save(ctx, u); err != nil {
			return err
		}
		return invalid
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return apperror.Internal("falha ao gerar hash da senha", err)
	}
	u.PasswordHash = hash
	return s.users.Save(ctx, u)
}
