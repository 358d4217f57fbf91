package writer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wudi/pdfreport/ir/raw"
	"github.com/wudi/pdfreport/ir/semantic"
)

type objectBuilder struct {
	doc     *semantic.Document
	cfg     Config
	objects map[raw.ObjectRef]raw.Object
	objNum  int

	fontRefs    map[string]raw.ObjectRef
	xobjectRefs map[string]raw.ObjectRef
}

func newObjectBuilder(doc *semantic.Document, cfg Config) *objectBuilder {
	return &objectBuilder{
		doc:         doc,
		cfg:         cfg,
		objects:     make(map[raw.ObjectRef]raw.Object),
		objNum:      1,
		fontRefs:    make(map[string]raw.ObjectRef),
		xobjectRefs: make(map[string]raw.ObjectRef),
	}
}

func (b *objectBuilder) nextRef() raw.ObjectRef {
	ref := raw.ObjectRef{Num: b.objNum, Gen: 0}
	b.objNum++
	return ref
}

// Build returns every indirect object, the catalog reference and the optional
// info dictionary reference.
func (b *objectBuilder) Build() (map[raw.ObjectRef]raw.Object, raw.ObjectRef, *raw.ObjectRef, error) {
	if len(b.doc.Pages) == 0 {
		return nil, raw.ObjectRef{}, nil, fmt.Errorf("document has no pages")
	}
	catalogRef := b.nextRef()
	pagesRef := b.nextRef()

	var infoRef *raw.ObjectRef
	if info := b.infoDict(); info != nil {
		ref := b.nextRef()
		infoRef = &ref
		b.objects[ref] = info
	}

	pageRefs := make([]raw.ObjectRef, len(b.doc.Pages))
	for i := range b.doc.Pages {
		pageRefs[i] = b.nextRef()
	}
	for i, p := range b.doc.Pages {
		pageDict, err := b.pageDict(p, pagesRef)
		if err != nil {
			return nil, raw.ObjectRef{}, nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		b.objects[pageRefs[i]] = pageDict
	}

	kids := raw.NewArray()
	for _, r := range pageRefs {
		kids.Append(raw.RefTo(r))
	}
	pages := raw.Dict()
	pages.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	pages.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(len(pageRefs))))
	pages.Set(raw.NameLiteral("Kids"), kids)
	b.objects[pagesRef] = pages

	catalog := raw.Dict()
	catalog.Set(raw.NameLiteral("Type"), raw.NameLiteral("Catalog"))
	catalog.Set(raw.NameLiteral("Pages"), raw.RefTo(pagesRef))
	if b.doc.Lang != "" {
		catalog.Set(raw.NameLiteral("Lang"), textString(b.doc.Lang))
	}
	if len(b.doc.Outlines) > 0 {
		outlinesRef := b.buildOutlines(pageRefs)
		catalog.Set(raw.NameLiteral("Outlines"), raw.RefTo(outlinesRef))
		catalog.Set(raw.NameLiteral("PageMode"), raw.NameLiteral("UseOutlines"))
	}
	b.objects[catalogRef] = catalog
	return b.objects, catalogRef, infoRef, nil
}

func (b *objectBuilder) infoDict() *raw.DictObj {
	info := b.doc.Info
	if info == nil {
		return nil
	}
	d := raw.Dict()
	set := func(key, val string) {
		if val != "" {
			d.Set(raw.NameLiteral(key), textString(val))
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	set("Keywords", strings.Join(info.Keywords, ","))
	if d.Len() == 0 {
		return nil
	}
	return d
}

func (b *objectBuilder) pageDict(p *semantic.Page, parent raw.ObjectRef) (*raw.DictObj, error) {
	d := raw.Dict()
	d.Set(raw.NameLiteral("Type"), raw.NameLiteral("Page"))
	d.Set(raw.NameLiteral("Parent"), raw.RefTo(parent))
	d.Set(raw.NameLiteral("MediaBox"), rectArray(p.MediaBox))

	res := raw.Dict()
	res.Set(raw.NameLiteral("ProcSet"), raw.NewArray(
		raw.NameLiteral("PDF"), raw.NameLiteral("Text"), raw.NameLiteral("ImageB"), raw.NameLiteral("ImageC"),
	))
	if p.Resources != nil {
		if len(p.Resources.Fonts) > 0 {
			fonts := raw.Dict()
			for _, name := range sortedKeys(p.Resources.Fonts) {
				fonts.Set(raw.NameLiteral(name), raw.RefTo(b.fontRef(p.Resources.Fonts[name])))
			}
			res.Set(raw.NameLiteral("Font"), fonts)
		}
		if len(p.Resources.XObjects) > 0 {
			xobjs := raw.Dict()
			for _, name := range sortedKeys(p.Resources.XObjects) {
				ref, err := b.xobjectRef(name, p.Resources.XObjects[name])
				if err != nil {
					return nil, err
				}
				xobjs.Set(raw.NameLiteral(name), raw.RefTo(ref))
			}
			res.Set(raw.NameLiteral("XObject"), xobjs)
		}
	}
	d.Set(raw.NameLiteral("Resources"), res)

	var data []byte
	for _, cs := range p.Contents {
		data = append(data, serializeContentStream(cs)...)
	}
	contentRef := b.nextRef()
	stream, err := b.stream(raw.Dict(), data)
	if err != nil {
		return nil, fmt.Errorf("content stream: %w", err)
	}
	b.objects[contentRef] = stream
	d.Set(raw.NameLiteral("Contents"), raw.RefTo(contentRef))
	return d, nil
}

// fontRef shares one font object between every page using the same font.
func (b *objectBuilder) fontRef(f *semantic.Font) raw.ObjectRef {
	subtype := f.Subtype
	if subtype == "" {
		subtype = "Type1"
	}
	key := subtype + "|" + f.BaseFont + "|" + f.Encoding
	if ref, ok := b.fontRefs[key]; ok {
		return ref
	}
	ref := b.nextRef()
	d := raw.Dict()
	d.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
	d.Set(raw.NameLiteral("Subtype"), raw.NameLiteral(subtype))
	d.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral(f.BaseFont))
	if f.Encoding != "" {
		d.Set(raw.NameLiteral("Encoding"), raw.NameLiteral(f.Encoding))
	}
	b.objects[ref] = d
	b.fontRefs[key] = ref
	return ref
}

// xobjectRef writes an image once per resource name; the builder names images
// document-wide so equal names denote the same image.
func (b *objectBuilder) xobjectRef(name string, xo semantic.XObject) (raw.ObjectRef, error) {
	if ref, ok := b.xobjectRefs[name]; ok {
		return ref, nil
	}
	ref, err := b.imageObject(xo)
	if err != nil {
		return raw.ObjectRef{}, fmt.Errorf("image %s: %w", name, err)
	}
	b.xobjectRefs[name] = ref
	return ref, nil
}

func (b *objectBuilder) imageObject(xo semantic.XObject) (raw.ObjectRef, error) {
	if xo.Width <= 0 || xo.Height <= 0 {
		return raw.ObjectRef{}, fmt.Errorf("invalid dimensions %dx%d", xo.Width, xo.Height)
	}
	ref := b.nextRef()
	d := raw.Dict()
	d.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
	d.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Image"))
	d.Set(raw.NameLiteral("Width"), raw.NumberInt(int64(xo.Width)))
	d.Set(raw.NameLiteral("Height"), raw.NumberInt(int64(xo.Height)))
	cs := "DeviceRGB"
	if xo.ColorSpace != nil && xo.ColorSpaceName() != "" {
		cs = xo.ColorSpaceName()
	}
	d.Set(raw.NameLiteral("ColorSpace"), raw.NameLiteral(cs))
	bpc := xo.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	d.Set(raw.NameLiteral("BitsPerComponent"), raw.NumberInt(int64(bpc)))
	if xo.Interpolate {
		d.Set(raw.NameLiteral("Interpolate"), raw.Bool(true))
	}
	if xo.SMask != nil {
		maskRef, err := b.imageObject(*xo.SMask)
		if err != nil {
			return raw.ObjectRef{}, fmt.Errorf("soft mask: %w", err)
		}
		d.Set(raw.NameLiteral("SMask"), raw.RefTo(maskRef))
	}

	if xo.Filter != "" {
		d.Set(raw.NameLiteral("Filter"), raw.NameLiteral(xo.Filter))
		d.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(xo.Data))))
		b.objects[ref] = raw.NewStream(d, xo.Data)
		return ref, nil
	}
	stream, err := b.stream(d, xo.Data)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	b.objects[ref] = stream
	return ref, nil
}

// stream applies the configured compression and sets /Length.
func (b *objectBuilder) stream(d *raw.DictObj, data []byte) (*raw.StreamObj, error) {
	if b.cfg.Compression != 0 && len(data) > 0 {
		enc, err := flateEncode(data, b.cfg.Compression)
		if err != nil {
			return nil, err
		}
		data = enc
		d.Set(raw.NameLiteral("Filter"), raw.NameLiteral("FlateDecode"))
	}
	d.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(data))))
	return raw.NewStream(d, data), nil
}

func (b *objectBuilder) buildOutlines(pageRefs []raw.ObjectRef) raw.ObjectRef {
	rootRef := b.nextRef()
	root := raw.Dict()
	root.Set(raw.NameLiteral("Type"), raw.NameLiteral("Outlines"))
	first, last, count := b.outlineLevel(b.doc.Outlines, rootRef, pageRefs)
	root.Set(raw.NameLiteral("First"), raw.RefTo(first))
	root.Set(raw.NameLiteral("Last"), raw.RefTo(last))
	root.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(count)))
	b.objects[rootRef] = root
	return rootRef
}

// outlineLevel links one sibling list and returns its first and last
// references plus the number of visible descendants.
func (b *objectBuilder) outlineLevel(items []semantic.OutlineItem, parent raw.ObjectRef, pageRefs []raw.ObjectRef) (raw.ObjectRef, raw.ObjectRef, int) {
	refs := make([]raw.ObjectRef, len(items))
	for i := range items {
		refs[i] = b.nextRef()
	}
	total := len(items)
	for i, item := range items {
		d := raw.Dict()
		d.Set(raw.NameLiteral("Title"), textString(item.Title))
		d.Set(raw.NameLiteral("Parent"), raw.RefTo(parent))
		if i > 0 {
			d.Set(raw.NameLiteral("Prev"), raw.RefTo(refs[i-1]))
		}
		if i < len(items)-1 {
			d.Set(raw.NameLiteral("Next"), raw.RefTo(refs[i+1]))
		}
		if item.PageIndex >= 0 && item.PageIndex < len(pageRefs) {
			d.Set(raw.NameLiteral("Dest"), outlineDest(pageRefs[item.PageIndex], item.Dest))
		}
		if len(item.Children) > 0 {
			first, last, n := b.outlineLevel(item.Children, refs[i], pageRefs)
			d.Set(raw.NameLiteral("First"), raw.RefTo(first))
			d.Set(raw.NameLiteral("Last"), raw.RefTo(last))
			d.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(n)))
			total += n
		}
		b.objects[refs[i]] = d
	}
	return refs[0], refs[len(refs)-1], total
}

func outlineDest(page raw.ObjectRef, dest *semantic.OutlineDestination) *raw.ArrayObj {
	arr := raw.NewArray(raw.RefTo(page), raw.NameLiteral("XYZ"))
	if dest == nil {
		arr.Append(raw.NullObj{})
		arr.Append(raw.NullObj{})
		arr.Append(raw.NullObj{})
		return arr
	}
	arr.Append(xyzDestValue(dest.X))
	arr.Append(xyzDestValue(dest.Y))
	arr.Append(xyzDestValue(dest.Zoom))
	return arr
}

func sortedRefs(objects map[raw.ObjectRef]raw.Object) []raw.ObjectRef {
	ordered := make([]raw.ObjectRef, 0, len(objects))
	for ref := range objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })
	return ordered
}

// sortedKeys keeps object numbering independent of map iteration order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
