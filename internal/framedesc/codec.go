package framedesc

import (
	"bytes"

	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// Fixed field widths for the non-entropy-coded patch descriptor.
const (
	posBits  = 16
	sizeBits = 12
	projBits = 3
	orientBits = 3
)

// WritePatchFrame bit-packs records in order, followed by a terminator
// tag, into a fresh byte buffer.
func WritePatchFrame(records []PatchRecord, asps ASPS) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	vw := NewVariableLengthWriter(&buf)

	for _, rec := range records {
		if err := writeTag(w, rec.Tag); err != nil {
			return nil, err
		}
		switch rec.Tag {
		case PatchIntra:
			if err := writeIntra(w, rec.Intra); err != nil {
				return nil, err
			}
		case PatchInter:
			if err := writeInter(w, rec.Inter); err != nil {
				return nil, err
			}
		case PatchRaw:
			if err := writeRaw(w, rec.Raw, vw); err != nil {
				return nil, err
			}
		case PatchEOM:
			if err := writeEOM(w, rec.Eom, vw); err != nil {
				return nil, err
			}
		}
	}
	if err := writeTag(w, PatchTerminator); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadPatchFrame is WritePatchFrame's inverse: it reads records until
// the terminator tag.
func ReadPatchFrame(data []byte, asps ASPS) ([]PatchRecord, error) {
	buf := bytes.NewReader(data)
	r := NewReader(buf)
	vr := NewVariableLengthReader(buf)

	var records []PatchRecord
	for {
		tag, err := readTag(r)
		if err != nil {
			return nil, err
		}
		if tag == PatchTerminator {
			break
		}
		switch tag {
		case PatchIntra:
			ip, err := readIntra(r)
			if err != nil {
				return nil, err
			}
			records = append(records, PatchRecord{Tag: PatchIntra, Intra: ip})
		case PatchInter:
			ip, err := readInter(r)
			if err != nil {
				return nil, err
			}
			records = append(records, PatchRecord{Tag: PatchInter, Inter: ip})
		case PatchRaw:
			rp, err := readRaw(r, vr)
			if err != nil {
				return nil, err
			}
			records = append(records, PatchRecord{Tag: PatchRaw, Raw: rp})
		case PatchEOM:
			ep, err := readEOM(r, vr)
			if err != nil {
				return nil, err
			}
			records = append(records, PatchRecord{Tag: PatchEOM, Eom: ep})
		}
	}
	return records, nil
}

func writeTag(w *Writer, tag PatchKind) error {
	return w.WriteBits(uint32(tag), 3)
}

func readTag(r *Reader) (PatchKind, error) {
	v, err := r.ReadBits(3)
	return PatchKind(v), err
}

func writeIntra(w *Writer, p *IntraPatch) error {
	fields := []struct {
		val uint32
		n   uint
	}{
		{uint32(p.U0), posBits}, {uint32(p.V0), posBits},
		{uint32(p.LodScaleXMinus1), 4}, {uint32(p.LodScaleY), 4},
		{uint32(p.ProjectionID), projBits}, {uint32(p.Orientation), orientBits},
		{boolBit(p.LodEnable), 1},
	}
	for _, f := range fields {
		if err := w.WriteBits(f.val, f.n); err != nil {
			return err
		}
	}
	if err := w.WriteSigned(p.U1, posBits); err != nil {
		return err
	}
	if err := w.WriteSigned(p.V1, posBits); err != nil {
		return err
	}
	if err := w.WriteSigned(p.D1MinLevel, posBits); err != nil {
		return err
	}
	return w.WriteSigned(p.SizeDMinLevel, sizeBits)
}

func readIntra(r *Reader) (*IntraPatch, error) {
	p := &IntraPatch{}
	u0, err := r.ReadBits(posBits)
	if err != nil {
		return nil, err
	}
	v0, err := r.ReadBits(posBits)
	if err != nil {
		return nil, err
	}
	lodX, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	lodY, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	proj, err := r.ReadBits(projBits)
	if err != nil {
		return nil, err
	}
	orient, err := r.ReadBits(orientBits)
	if err != nil {
		return nil, err
	}
	lodEn, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	u1, err := r.ReadSigned(posBits)
	if err != nil {
		return nil, err
	}
	v1, err := r.ReadSigned(posBits)
	if err != nil {
		return nil, err
	}
	d1, err := r.ReadSigned(posBits)
	if err != nil {
		return nil, err
	}
	sizeD, err := r.ReadSigned(sizeBits)
	if err != nil {
		return nil, err
	}

	p.U0, p.V0 = int(u0), int(v0)
	p.LodScaleXMinus1, p.LodScaleY = int(lodX), int(lodY)
	p.ProjectionID = int(proj)
	p.Orientation = patch.Orientation(orient)
	p.LodEnable = lodEn == 1
	p.U1, p.V1, p.D1MinLevel, p.SizeDMinLevel = u1, v1, d1, sizeD
	return p, nil
}

func writeInter(w *Writer, p *InterPatch) error {
	if err := w.WriteBits(uint32(p.RefFrame), 8); err != nil {
		return err
	}
	if err := w.WriteSigned(int32(p.PredIdxDelta), sizeBits); err != nil {
		return err
	}
	for _, v := range []int32{int32(p.DeltaU0), int32(p.DeltaV0), p.DeltaU1, p.DeltaV1,
		int32(p.DeltaSizeU0), int32(p.DeltaSizeV0), p.DeltaD1MinLevel, p.DeltaSizeDMinLevel} {
		if err := w.WriteSigned(v, sizeBits); err != nil {
			return err
		}
	}
	return nil
}

func readInter(r *Reader) (*InterPatch, error) {
	p := &InterPatch{}
	ref, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	pred, err := r.ReadSigned(sizeBits)
	if err != nil {
		return nil, err
	}
	vals := make([]int32, 8)
	for i := range vals {
		v, err := r.ReadSigned(sizeBits)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	p.RefFrame = int(ref)
	p.PredIdxDelta = int(pred)
	p.DeltaU0, p.DeltaV0 = int(vals[0]), int(vals[1])
	p.DeltaU1, p.DeltaV1 = vals[2], vals[3]
	p.DeltaSizeU0, p.DeltaSizeV0 = int(vals[4]), int(vals[5])
	p.DeltaD1MinLevel, p.DeltaSizeDMinLevel = vals[6], vals[7]
	return p, nil
}

func writeRaw(w *Writer, p *RawPatchRecord, vw *VariableLengthWriter) error {
	fields := []struct {
		val uint32
		n   uint
	}{
		{uint32(p.U0), posBits}, {uint32(p.V0), posBits},
		{uint32(p.SizeU0), sizeBits}, {uint32(p.SizeV0), sizeBits},
	}
	for _, f := range fields {
		if err := w.WriteBits(f.val, f.n); err != nil {
			return err
		}
	}
	if err := w.WriteSigned(p.U1, posBits); err != nil {
		return err
	}
	if err := w.WriteSigned(p.V1, posBits); err != nil {
		return err
	}
	if err := w.WriteSigned(p.D1, posBits); err != nil {
		return err
	}
	if err := w.WriteBit(boolBitInt(p.InRawVideo)); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return vw.Write(uint32(p.NumRawPoints))
}

func readRaw(r *Reader, vr *VariableLengthReader) (*RawPatchRecord, error) {
	p := &RawPatchRecord{}
	u0, err := r.ReadBits(posBits)
	if err != nil {
		return nil, err
	}
	v0, err := r.ReadBits(posBits)
	if err != nil {
		return nil, err
	}
	su, err := r.ReadBits(sizeBits)
	if err != nil {
		return nil, err
	}
	sv, err := r.ReadBits(sizeBits)
	if err != nil {
		return nil, err
	}
	u1, err := r.ReadSigned(posBits)
	if err != nil {
		return nil, err
	}
	v1, err := r.ReadSigned(posBits)
	if err != nil {
		return nil, err
	}
	d1, err := r.ReadSigned(posBits)
	if err != nil {
		return nil, err
	}
	inRaw, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	r.Align()
	n, err := vr.Read()
	if err != nil {
		return nil, err
	}
	p.U0, p.V0 = int(u0), int(v0)
	p.SizeU0, p.SizeV0 = int(su), int(sv)
	p.U1, p.V1, p.D1 = u1, v1, d1
	p.InRawVideo = inRaw == 1
	p.NumRawPoints = int(n)
	return p, nil
}

func writeEOM(w *Writer, p *EomPatchRecord, vw *VariableLengthWriter) error {
	fields := []struct {
		val uint32
		n   uint
	}{
		{uint32(p.U0), posBits}, {uint32(p.V0), posBits},
		{uint32(p.SizeU), sizeBits}, {uint32(p.SizeV), sizeBits},
		{uint32(len(p.AssocPatches)), 8},
	}
	for _, f := range fields {
		if err := w.WriteBits(f.val, f.n); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for i, a := range p.AssocPatches {
		if err := vw.Write(uint32(a)); err != nil {
			return err
		}
		if err := vw.Write(uint32(p.EomPointsPerAssoc[i])); err != nil {
			return err
		}
	}
	return nil
}

func readEOM(r *Reader, vr *VariableLengthReader) (*EomPatchRecord, error) {
	p := &EomPatchRecord{}
	u0, err := r.ReadBits(posBits)
	if err != nil {
		return nil, err
	}
	v0, err := r.ReadBits(posBits)
	if err != nil {
		return nil, err
	}
	su, err := r.ReadBits(sizeBits)
	if err != nil {
		return nil, err
	}
	sv, err := r.ReadBits(sizeBits)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	r.Align()
	p.U0, p.V0 = int(u0), int(v0)
	p.SizeU, p.SizeV = int(su), int(sv)
	p.AssocPatches = make([]int, count)
	p.EomPointsPerAssoc = make([]int, count)
	for i := 0; i < int(count); i++ {
		a, err := vr.Read()
		if err != nil {
			return nil, err
		}
		n, err := vr.Read()
		if err != nil {
			return nil, err
		}
		p.AssocPatches[i] = int(a)
		p.EomPointsPerAssoc[i] = int(n)
	}
	return p, nil
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func boolBitInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
