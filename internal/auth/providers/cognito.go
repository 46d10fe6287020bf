package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/bazaarhq/bazaar/internal/auth"
)

const (
	cognitoHTTPTimeout    = 30 * time.Second
	cognitoUserTypeAttr   = "custom:userType"
	cognitoSecretHashAttr = "SECRET_HASH"
)

// CognitoOptions configure the Cognito user pool app client used for sign in and sign up.
type CognitoOptions struct {
	Region          string
	ClientID        string
	ClientSecret    string
	AccessKeyID     string
	SecretAccessKey string
}

type cognitoAPI interface {
	InitiateAuth(context.Context, *cognitoidentityprovider.InitiateAuthInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	SignUp(context.Context, *cognitoidentityprovider.SignUpInput, ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
}

type CognitoProvider struct {
	clientID     string
	clientSecret string
	api          cognitoAPI
}

func NewCognitoProvider(ctx context.Context, opts CognitoOptions) (*CognitoProvider, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		return nil, errors.New("cognito region is required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithHTTPClient(&http.Client{Timeout: cognitoHTTPTimeout}),
	}
	accessKeyID := strings.TrimSpace(opts.AccessKeyID)
	secretAccessKey := strings.TrimSpace(opts.SecretAccessKey)
	switch {
	case accessKeyID != "" && secretAccessKey != "":
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	case accessKeyID != "" || secretAccessKey != "":
		return nil, errors.New("cognito access key id and secret access key must be set together")
	default:
		// InitiateAuth and SignUp are public app client calls and need no AWS credentials.
		loadOpts = append(loadOpts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return newCognitoProviderWithAPI(cognitoidentityprovider.NewFromConfig(cfg), opts)
}

func newCognitoProviderWithAPI(api cognitoAPI, opts CognitoOptions) (*CognitoProvider, error) {
	clientID := strings.TrimSpace(opts.ClientID)
	if clientID == "" {
		return nil, errors.New("cognito client id is required")
	}
	return &CognitoProvider{
		clientID:     clientID,
		clientSecret: strings.TrimSpace(opts.ClientSecret),
		api:          api,
	}, nil
}

func (p *CognitoProvider) Name() string {
	return NameCognito
}

func (p *CognitoProvider) SignIn(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	params := map[string]string{
		"USERNAME": creds.Email,
		"PASSWORD": creds.Password,
	}
	if hash := p.secretHash(creds.Email); hash != "" {
		params[cognitoSecretHashAttr] = hash
	}

	out, err := p.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow:       cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(p.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return auth.Identity{}, cognitoError(err)
	}
	if out.ChallengeName != "" {
		return auth.Identity{}, &auth.Error{
			Kind:    auth.KindRejected,
			Message: "Additional verification is required to sign in to this account.",
			Err:     fmt.Errorf("cognito challenge %s", out.ChallengeName),
		}
	}
	if out.AuthenticationResult == nil || aws.ToString(out.AuthenticationResult.IdToken) == "" {
		return auth.Identity{}, auth.AsError(errors.New("cognito returned no authentication result"))
	}

	identity, err := identityFromToken(aws.ToString(out.AuthenticationResult.IdToken))
	if err != nil {
		return auth.Identity{}, auth.AsError(err)
	}
	return identity, nil
}

func (p *CognitoProvider) SignUp(ctx context.Context, creds auth.Credentials, meta auth.Metadata) (auth.Identity, error) {
	in := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(creds.Email),
		Password: aws.String(creds.Password),
		UserAttributes: []cognitotypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(creds.Email)},
			{Name: aws.String(cognitoUserTypeAttr), Value: aws.String(meta.UserType.String())},
		},
	}
	if hash := p.secretHash(creds.Email); hash != "" {
		in.SecretHash = aws.String(hash)
	}

	out, err := p.api.SignUp(ctx, in)
	if err != nil {
		return auth.Identity{}, cognitoError(err)
	}
	return auth.Identity{
		Subject:  aws.ToString(out.UserSub),
		Email:    creds.Email,
		UserType: meta.UserType,
	}, nil
}

// secretHash is required by app clients that have a client secret.
func (p *CognitoProvider) secretHash(username string) string {
	if p.clientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(p.clientSecret))
	mac.Write([]byte(username + p.clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func cognitoError(err error) *auth.Error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return auth.AsError(err)
	}

	kind := auth.KindRejected
	switch apiErr.ErrorCode() {
	case "NotAuthorizedException", "UserNotFoundException":
		kind = auth.KindInvalidCredentials
	case "UsernameExistsException", "AliasExistsException":
		kind = auth.KindConflict
	case "InvalidPasswordException", "InvalidParameterException":
		kind = auth.KindInvalidInput
	case "TooManyRequestsException", "InternalErrorException":
		kind = auth.KindUnavailable
	}

	msg := strings.TrimSpace(apiErr.ErrorMessage())
	if msg == "" {
		msg = "Authentication failed."
	}
	return &auth.Error{Kind: kind, Message: msg, Err: err}
}
