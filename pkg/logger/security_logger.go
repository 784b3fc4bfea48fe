package logger

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

var (
	secretParamRegex = regexp.MustCompile(`(?i)(secret|token|client[-_]?id)[=:]\s*[a-zA-Z0-9_\-]+`)

	securityLoggerOnce     sync.Once
	securityLoggerInstance *SecurityLogger
)

// SecurityLogger provides methods to safely log sensitive information
type SecurityLogger struct {
	*Logger
}

// NewSecurityLogger creates a new security-aware logger
func NewSecurityLogger(l *Logger) *SecurityLogger {
	return &SecurityLogger{Logger: l}
}

// GetSecurityLogger returns a security logger over the global logger
func GetSecurityLogger() *SecurityLogger {
	securityLoggerOnce.Do(func() {
		securityLoggerInstance = NewSecurityLogger(GetLogger())
	})
	return securityLoggerInstance
}

// MaskSecret keeps a short, stable fingerprint of a credential so two
// deployments can be compared without revealing the value.
func (sl *SecurityLogger) MaskSecret(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "secret#" + sl.GenerateHash(secret)[:8]
}

// MaskAPIEndpoint keeps the host and hides the path
func (sl *SecurityLogger) MaskAPIEndpoint(apiURL string) string {
	if apiURL == "" {
		return ""
	}

	parsedURL, err := url.Parse(apiURL)
	if err != nil || parsedURL.Host == "" {
		return "api-endpoint#" + sl.GenerateHash(apiURL)[:8]
	}

	return fmt.Sprintf("%s/api#%s", parsedURL.Host, sl.GenerateHash(apiURL)[:8])
}

// MaskSensitiveData masks credential-like fields in a log field map
func (sl *SecurityLogger) MaskSensitiveData(data map[string]interface{}) map[string]interface{} {
	masked := make(map[string]interface{}, len(data))

	for key, value := range data {
		lowerKey := strings.ToLower(key)
		str, isString := value.(string)

		switch {
		case !isString:
			masked[key] = value
		case strings.Contains(lowerKey, "secret"),
			strings.Contains(lowerKey, "client_id"),
			strings.Contains(lowerKey, "token"):
			masked[key] = sl.MaskSecret(str)
		case strings.Contains(lowerKey, "endpoint"), strings.Contains(lowerKey, "url"):
			masked[key] = sl.MaskAPIEndpoint(str)
		default:
			masked[key] = value
		}
	}

	return masked
}

// GenerateHash returns the hex sha256 of data
func (sl *SecurityLogger) GenerateHash(data string) string {
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// MaskLogMessage masks credentials that leak into free-form messages
func (sl *SecurityLogger) MaskLogMessage(message string) string {
	return secretParamRegex.ReplaceAllString(message, "${1}=***")
}

// SafeInfo logs info with automatic sensitive data masking
func (sl *SecurityLogger) SafeInfo(msg string, fields map[string]interface{}) {
	if fields != nil {
		sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Info(sl.MaskLogMessage(msg))
		return
	}
	sl.Logger.Info(sl.MaskLogMessage(msg))
}

// SafeWarn logs warning with automatic sensitive data masking
func (sl *SecurityLogger) SafeWarn(msg string, fields map[string]interface{}) {
	if fields != nil {
		sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Warn(sl.MaskLogMessage(msg))
		return
	}
	sl.Logger.Warn(sl.MaskLogMessage(msg))
}

// SafeError logs error with automatic sensitive data masking
func (sl *SecurityLogger) SafeError(msg string, err error, fields map[string]interface{}) {
	maskedFields := map[string]interface{}{
		"error": sl.MaskLogMessage(err.Error()),
	}
	for k, v := range sl.MaskSensitiveData(fields) {
		maskedFields[k] = v
	}
	sl.Logger.WithFields(maskedFields).Error(sl.MaskLogMessage(msg))
}
