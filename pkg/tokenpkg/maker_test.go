package tokenpkg

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var tokenTypes = []string{TypePaseto, TypeJWT}

func TestNewMakerKeySize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		tokenType string
		key       string
		wantErr   bool
	}{
		{name: "PasetoExactKey", tokenType: TypePaseto, key: strings.Repeat("k", 32)},
		{name: "PasetoShortKey", tokenType: TypePaseto, key: strings.Repeat("k", 31), wantErr: true},
		{name: "PasetoLongKey", tokenType: TypePaseto, key: strings.Repeat("k", 33), wantErr: true},
		{name: "JWTMinimalKey", tokenType: TypeJWT, key: strings.Repeat("k", minSecretKeySize)},
		{name: "JWTLongKey", tokenType: TypeJWT, key: strings.Repeat("k", 64)},
		{name: "JWTShortKey", tokenType: TypeJWT, key: strings.Repeat("k", minSecretKeySize-1), wantErr: true},
		{name: "UnknownTypeFallsBackToPaseto", tokenType: "opaque", key: strings.Repeat("k", 32)},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			maker, err := NewMaker(tc.tokenType, tc.key)
			if tc.wantErr {
				if err == nil {
					t.Errorf("NewMaker(%q, %q) returned nil error", tc.tokenType, tc.key)
				}

				return
			}

			if err != nil {
				t.Fatalf("NewMaker(%q, %q) returned error: %v", tc.tokenType, tc.key, err)
			}

			if maker == nil {
				t.Errorf("NewMaker(%q, %q) returned nil maker", tc.tokenType, tc.key)
			}
		})
	}
}

func TestMakerRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tokenType := range tokenTypes {
		tokenType := tokenType

		t.Run(tokenType, func(t *testing.T) {
			t.Parallel()

			maker, err := NewMaker(tokenType, randompkg.String(32))
			if err != nil {
				t.Fatalf("NewMaker(%q) returned error: %v", tokenType, err)
			}

			owner := randompkg.Owner()
			duration := 15 * time.Minute

			token, issued, err := maker.CreateToken(owner, duration)
			if err != nil {
				t.Fatalf("maker.CreateToken(%v, %v) returned error: %v", owner, duration, err)
			}

			verified, err := maker.VerifyToken(token)
			if err != nil {
				t.Fatalf("maker.VerifyToken(%v) returned error: %v", token, err)
			}

			want := &Payload{
				Username:  owner,
				IssuedAt:  time.Now(),
				ExpiredAt: time.Now().Add(duration),
			}

			ignore := cmpopts.IgnoreFields(Payload{}, "ID")
			delta := cmpopts.EquateApproxTime(time.Second)

			if diff := cmp.Diff(want, issued, ignore, delta); diff != "" {
				t.Errorf("issued payload mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(issued, verified, delta); diff != "" {
				t.Errorf("verified payload mismatch (-issued +verified):\n%s", diff)
			}
		})
	}
}

func TestMakerRejects(t *testing.T) {
	t.Parallel()

	for _, tokenType := range tokenTypes {
		tokenType := tokenType

		t.Run(tokenType, func(t *testing.T) {
			t.Parallel()

			maker, err := NewMaker(tokenType, randompkg.String(32))
			if err != nil {
				t.Fatalf("NewMaker(%q) returned error: %v", tokenType, err)
			}

			foreign, err := NewMaker(tokenType, randompkg.String(32))
			if err != nil {
				t.Fatalf("NewMaker(%q) returned error: %v", tokenType, err)
			}

			expired, _, err := maker.CreateToken(randompkg.Owner(), -time.Minute)
			if err != nil {
				t.Fatalf("maker.CreateToken returned error: %v", err)
			}

			foreignToken, _, err := foreign.CreateToken(randompkg.Owner(), time.Minute)
			if err != nil {
				t.Fatalf("foreign.CreateToken returned error: %v", err)
			}

			valid, _, err := maker.CreateToken(randompkg.Owner(), time.Minute)
			if err != nil {
				t.Fatalf("maker.CreateToken returned error: %v", err)
			}

			testCases := []struct {
				name  string
				token string
				want  error
			}{
				{name: "Expired", token: expired, want: ErrExpiredToken},
				{name: "SignedWithOtherKey", token: foreignToken, want: ErrInvalidToken},
				{name: "Truncated", token: valid[:len(valid)-4], want: ErrInvalidToken},
				{name: "Empty", token: "", want: ErrInvalidToken},
				{name: "Garbage", token: "not-a-token", want: ErrInvalidToken},
			}

			for _, tc := range testCases {
				payload, err := maker.VerifyToken(tc.token)
				if !errors.Is(err, tc.want) {
					t.Errorf("%s: maker.VerifyToken returned error %v, want %v", tc.name, err, tc.want)
				}

				if payload != nil {
					t.Errorf("%s: maker.VerifyToken returned payload %+v, want nil", tc.name, payload)
				}
			}
		})
	}
}

func TestJWTMakerRejectsAlgNone(t *testing.T) {
	t.Parallel()

	payload, err := NewPayload(randompkg.Owner(), time.Minute)
	if err != nil {
		t.Fatalf("NewPayload returned error: %v", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, payload).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}

	maker, err := NewJWTMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewJWTMaker returned error: %v", err)
	}

	if _, err := maker.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("maker.VerifyToken returned error %v, want %v", err, ErrInvalidToken)
	}
}
