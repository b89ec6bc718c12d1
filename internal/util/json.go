package util

import "github.com/bytedance/sonic"

// JSON编解码统一走sonic，与gin的响应序列化保持同一套实现

// MarshalJSON 序列化为JSON字节
func MarshalJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// UnmarshalJSON 反序列化JSON字节
func UnmarshalJSON(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
