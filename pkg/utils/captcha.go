package utils

import "github.com/dchest/captcha"

// VerifyCaptcha checks a solution against the in-process captcha store. A
// captcha can be verified once.
func VerifyCaptcha(id, value string) bool {
	return id != "" && captcha.VerifyString(id, value)
}
