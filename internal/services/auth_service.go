package services

import (
	"fmt"
	"log"
	"time"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	memberRepo repositories.MemberRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(memberRepo repositories.MemberRepository, jwtSecret string) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterMember registers a new member, hashes their password, and saves them.
func (s *AuthService) RegisterMember(member *models.Member) error {
	// Check if username or email already exists
	if existing, err := s.memberRepo.GetByUsername(member.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken", member.Username)
	}
	if existing, err := s.memberRepo.GetByEmail(member.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered", member.Email)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(member.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	member.Password = string(hashedPassword) // Store the hashed password

	if err := s.memberRepo.Create(member); err != nil {
		return fmt.Errorf("failed to register member: %w", err)
	}
	return nil
}

// LoginMember authenticates a member and returns a JWT token if successful.
func (s *AuthService) LoginMember(username, password string) (string, error) {
	member, err := s.memberRepo.GetByUsername(username)
	if err != nil {
		// It's good practice not to reveal if the username exists or not for security
		return "", fmt.Errorf("invalid credentials")
	}

	// Compare the provided password with the hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Generate JWT token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"member_id": member.ID,
		"username":  member.Username,
		"exp":       time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":       time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
