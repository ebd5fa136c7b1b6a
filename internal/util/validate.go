package util

import "regexp"

// 标准 UUID 格式（8-4-4-4-12 十六进制），非法 ID 在进入存储层之前就被拒绝
var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(id string) bool {
	return uuidPattern.MatchString(id)
}
