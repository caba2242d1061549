package qrcode

import (
	stderrors "errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"HustleHeroes/config"
	"HustleHeroes/pkg/errors"
)

// 打卡二维码的签名载荷。雇主端生成后渲染成二维码展示，
// 工人扫码后把原始 token 随打卡请求一起提交，由服务端校验。
// 图片渲染属于展示层，核心只负责签发与校验。

// Claims 打卡二维码绑定的班次信息
type Claims struct {
	JobID      int64     `json:"job_id"`
	ShiftID    int64     `json:"shift_id"`
	Date       string    `json:"date"` // 班次日期，格式 2006-01-02
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
}

// Issue 为一个 (job, shift, date) 的打卡窗口签发二维码 token
func Issue(jobID, shiftID int64, date string, validFrom, validUntil time.Time) (string, error) {
	claims := jwtv5.MapClaims{
		"jti":      uuid.NewString(), // 每次签发唯一，同一窗口重签不会产生相同 token
		"job_id":   jobID,
		"shift_id": shiftID,
		"date":     date,
		"nbf":      validFrom.Unix(),
		"exp":      validUntil.Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Cfg.QRSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign QR token: %w", err)
	}
	return signed, nil
}

// Validate 校验二维码 token，返回其绑定的班次信息。
// 过期返回 QRExpired，签名或载荷非法返回 QRInvalid。
func Validate(tokenStr string) (*Claims, error) {
	parsed, err := jwtv5.Parse(tokenStr, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.Cfg.QRSecret), nil
	})
	if err != nil {
		if stderrors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, errors.QRExpired
		}
		return nil, errors.QRInvalid
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.QRInvalid
	}

	jobID, okJob := claims["job_id"].(float64)
	shiftID, okShift := claims["shift_id"].(float64)
	date, okDate := claims["date"].(string)
	if !okJob || !okShift || !okDate {
		return nil, errors.QRInvalid
	}

	out := &Claims{
		JobID:   int64(jobID),
		ShiftID: int64(shiftID),
		Date:    date,
	}
	if nbf, ok := claims["nbf"].(float64); ok {
		out.ValidFrom = time.Unix(int64(nbf), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ValidUntil = time.Unix(int64(exp), 0)
	}
	return out, nil
}
