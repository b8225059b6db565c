package token

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned for input that is not a decodable JWT.
var ErrMalformed = errors.New("malformed token")

// Legacy secret-based service-account tokens carry flat claims.
const (
	LegacyNamespaceClaim      = "kubernetes.io/serviceaccount/namespace"
	LegacyServiceAccountClaim = "kubernetes.io/serviceaccount/service-account.name"
)

// Claims is the subset of service-account claims the dashboard reads.
//
// Bound (projected) tokens nest their claims under "kubernetes.io"; legacy
// tokens use flat keys. Namespace and ServiceAccount check both.
type Claims struct {
	LegacyNamespace      string            `json:"kubernetes.io/serviceaccount/namespace,omitempty"`
	LegacyServiceAccount string            `json:"kubernetes.io/serviceaccount/service-account.name,omitempty"`
	Kubernetes           *KubernetesClaims `json:"kubernetes.io,omitempty"`
	jwt.RegisteredClaims
}

// KubernetesClaims is the "kubernetes.io" object of a bound token.
type KubernetesClaims struct {
	Namespace      string     `json:"namespace,omitempty"`
	ServiceAccount *ObjectRef `json:"serviceaccount,omitempty"`
	Pod            *ObjectRef `json:"pod,omitempty"`
}

// ObjectRef names a Kubernetes object.
type ObjectRef struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
}

// Namespace returns the bound or legacy namespace, legacy first.
func (c *Claims) Namespace() string {
	if c == nil {
		return ""
	}
	if ns := strings.TrimSpace(c.LegacyNamespace); ns != "" {
		return ns
	}
	if c.Kubernetes != nil {
		return strings.TrimSpace(c.Kubernetes.Namespace)
	}
	return ""
}

// ServiceAccount returns the service account name, if any.
func (c *Claims) ServiceAccount() string {
	if c == nil {
		return ""
	}
	if c.LegacyServiceAccount != "" {
		return c.LegacyServiceAccount
	}
	if c.Kubernetes != nil && c.Kubernetes.ServiceAccount != nil {
		return c.Kubernetes.ServiceAccount.Name
	}
	return ""
}

// Inspect decodes raw without checking its signature or expiry.
func Inspect(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return claims, nil
}

// DefaultNamespace returns the namespace raw is bound to, or "" when raw is
// empty, malformed, or unbound.
func DefaultNamespace(raw string) string {
	claims, err := Inspect(raw)
	if err != nil {
		return ""
	}
	return claims.Namespace()
}
