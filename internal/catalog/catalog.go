// Package catalog 维护提供商能力目录：每个提供商可用的模型、区域、端点、档位
// 健康矩阵的瓦片集合由目录驱动，而不是由观测数据反推
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"aipulse/internal/errors"
	"aipulse/internal/util"
)

// DefaultKey 兜底能力条目的key：未知提供商回落到此条目
const DefaultKey = "_default"

//go:embed catalog.json
var embeddedCatalog []byte

// ModelEntry 目录中的一个模型条目：名称 + 默认档位 + 是否流式路由
type ModelEntry struct {
	Name      string `json:"name"`
	Tier      string `json:"tier,omitempty"`
	Streaming bool   `json:"streaming,omitempty"`
}

// Capability 单个提供商的能力描述
type Capability struct {
	Models    []ModelEntry `json:"models"`
	Regions   []string     `json:"regions"`
	Endpoints []string     `json:"endpoints"`
}

// Model 按名称查找模型条目
func (c Capability) Model(name string) (ModelEntry, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelEntry{}, false
}

// Catalog 提供商能力目录（加载后只读，无需加锁）
type Catalog struct {
	entries map[string]Capability
}

// Load 加载能力目录：优先使用path指定的外部文件，否则使用内嵌默认目录
// 目录缺少 _default 条目属于启动期配置错误，直接返回错误
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		external, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取目录文件失败 %s: %w", path, err)
		}
		data = external
	}

	entries := make(map[string]Capability)
	if err := util.UnmarshalJSON(data, &entries); err != nil {
		return nil, fmt.Errorf("解析能力目录失败: %w", err)
	}

	if _, ok := entries[DefaultKey]; !ok {
		return nil, errors.CatalogMissingError(DefaultKey)
	}

	return &Catalog{entries: entries}, nil
}

// Lookup 按提供商名查找能力条目，未知提供商回落到 _default
func (c *Catalog) Lookup(provider string) Capability {
	if entry, ok := c.entries[provider]; ok {
		return entry
	}
	return c.entries[DefaultKey]
}

// Has 判断提供商是否有专属条目（非兜底）
func (c *Catalog) Has(provider string) bool {
	_, ok := c.entries[provider]
	return ok
}

// Providers 返回所有具名提供商（不含 _default），顺序不保证
func (c *Catalog) Providers() []string {
	out := make([]string, 0, len(c.entries))
	for name := range c.entries {
		if name != DefaultKey {
			out = append(out, name)
		}
	}
	return out
}
