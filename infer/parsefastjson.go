package infer

import (
	"github.com/valyala/fastjson"
)

// walkFast folds one parsed fastjson value into the profiles. Numbers are
// probed as int64 first so `10` and `10.5` land on different tags; the
// promotion rule collapses them later if both show up at one path.
func (in *Inferrer) walkFast(v *fastjson.Value, path string, depth int) {
	switch v.Type() {
	case fastjson.TypeNull:
		in.profile(path).observeNull()
	case fastjson.TypeTrue:
		in.profile(path).observeBool(true, &in.cfg)
	case fastjson.TypeFalse:
		in.profile(path).observeBool(false, &in.cfg)
	case fastjson.TypeString:
		sb, err := v.StringBytes()
		if err != nil {
			return
		}
		in.profile(path).observeString(string(sb), &in.cfg)
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			in.profile(path).observeInt(i, &in.cfg)
			return
		}
		f, err := v.Float64()
		if err != nil {
			return
		}
		in.profile(path).observeFloat(f, &in.cfg)
	case fastjson.TypeArray:
		a, err := v.Array()
		if err != nil {
			return
		}
		if path != "" {
			in.profile(path).observeContainer(KindArray)
		}
		if !in.expandable(depth) && path != "" {
			return
		}
		for _, e := range a {
			in.walkFast(e, elemPath(path), depth+1)
		}
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return
		}
		if path != "" {
			in.profile(path).observeContainer(KindObject)
		}
		if !in.expandable(depth) && path != "" {
			return
		}
		o.Visit(func(key []byte, e *fastjson.Value) {
			in.walkFast(e, childPath(path, string(key)), depth+1)
		})
	}
}
