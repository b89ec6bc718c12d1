package util

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Anonymizer 匿名化器：对客户端/账户原始标识做带盐单向哈希
// 盐值仅存在于服务端进程内，绝不入库、不进日志、不出现在任何响应中
type Anonymizer struct {
	salt []byte
}

// NewAnonymizer 创建匿名化器（salt由部署方通过环境变量提供）
// 盐值先折叠为固定32字节密钥，规避keyed hash的密钥长度上限
func NewAnonymizer(salt string) *Anonymizer {
	key := blake2b.Sum256([]byte(salt))
	return &Anonymizer{salt: key[:]}
}

// Hash 将原始标识哈希为稳定的不透明令牌
// 相同 (salt, 原始ID) 必然产生相同令牌，保证跨批次聚合一致性；
// 令牌本身不可逆推出原始ID
func (a *Anonymizer) Hash(rawID string) string {
	if rawID == "" {
		return ""
	}
	h, _ := blake2b.New256(a.salt)
	h.Write([]byte(rawID))
	return hex.EncodeToString(h.Sum(nil))
}
