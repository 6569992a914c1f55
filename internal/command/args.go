package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Args 已校验的命令参数
type Args map[string]interface{}

// String 返回字符串参数，不存在时返回空串
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Number 返回数值参数
func (a Args) Number(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// Bool 返回布尔参数
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Object 返回对象参数
func (a Args) Object(name string) map[string]interface{} {
	m, _ := a[name].(map[string]interface{})
	return m
}

// Has 判断参数是否传入
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Bind 按参数声明解析并校验原始参数
// raw 可以是 JSON 数组（位置参数）、JSON 对象（命名参数）或空
func Bind(params []Param, raw json.RawMessage) (Args, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return bindNamed(params, map[string]interface{}{})
	}

	switch trimmed[0] {
	case '[':
		var values []interface{}
		if err := decode(trimmed, &values); err != nil {
			return nil, InvalidArguments("malformed argument list: %v", err)
		}
		return bindPositional(params, values)
	case '{':
		var values map[string]interface{}
		if err := decode(trimmed, &values); err != nil {
			return nil, InvalidArguments("malformed argument object: %v", err)
		}
		return bindNamed(params, values)
	default:
		return nil, InvalidArguments("arguments must be an array or an object")
	}
}

// bindPositional 绑定位置参数
func bindPositional(params []Param, values []interface{}) (Args, error) {
	lo, hi := required(params), len(params)
	if len(values) < lo || len(values) > hi {
		if lo == hi {
			return nil, InvalidArguments("expected %d argument(s), got %d", hi, len(values))
		}
		return nil, InvalidArguments("expected %d to %d arguments, got %d", lo, hi, len(values))
	}

	// 可选参数只能出现在末尾，缺失的必填参数在这里被发现
	args := make(Args, len(values))
	for i, p := range params {
		if i >= len(values) {
			if !p.Optional {
				return nil, InvalidArguments("missing argument %q", p.Name)
			}
			continue
		}
		if err := checkKind(p, values[i]); err != nil {
			return nil, err
		}
		args[p.Name] = values[i]
	}
	return args, nil
}

// bindNamed 绑定命名参数
func bindNamed(params []Param, values map[string]interface{}) (Args, error) {
	known := make(map[string]Param, len(params))
	for _, p := range params {
		known[p.Name] = p
	}

	for name := range values {
		if _, ok := known[name]; !ok {
			return nil, InvalidArguments("unexpected argument %q", name)
		}
	}

	args := make(Args, len(values))
	for _, p := range params {
		v, ok := values[p.Name]
		if !ok {
			if p.Optional {
				continue
			}
			return nil, InvalidArguments("missing argument %q", p.Name)
		}
		if err := checkKind(p, v); err != nil {
			return nil, err
		}
		args[p.Name] = v
	}
	return args, nil
}

// checkKind 校验参数类型
func checkKind(p Param, v interface{}) error {
	if v == nil {
		return InvalidArguments("argument %q must not be null", p.Name)
	}

	var ok bool
	switch p.Kind {
	case KIND_STRING:
		_, ok = v.(string)
	case KIND_NUMBER:
		_, ok = v.(float64)
	case KIND_BOOL:
		_, ok = v.(bool)
	case KIND_OBJECT:
		_, ok = v.(map[string]interface{})
	case KIND_ARRAY:
		_, ok = v.([]interface{})
	case KIND_ANY, "":
		ok = true
	default:
		return fmt.Errorf("param %q declares unknown kind %q", p.Name, p.Kind)
	}

	if !ok {
		return InvalidArguments("argument %q must be %s, got %s", p.Name, p.Kind, kindOf(v))
	}
	return nil
}

// kindOf 返回 JSON 值的类型名
func kindOf(v interface{}) string {
	switch v.(type) {
	case string:
		return string(KIND_STRING)
	case float64:
		return string(KIND_NUMBER)
	case bool:
		return string(KIND_BOOL)
	case map[string]interface{}:
		return string(KIND_OBJECT)
	case []interface{}:
		return string(KIND_ARRAY)
	case nil:
		return "null"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	}
}

// decode 解析 JSON，拒绝尾随数据
func decode(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}
