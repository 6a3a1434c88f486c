package translator

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/tsload/errors"
)

const wasmErrorBit = uint64(1) << 63

// WasmConfig holds configuration for a wasm-hosted translator
type WasmConfig struct {
	// MemoryLimitPages caps the translator's linear memory in 64KB pages.
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Wasm runs a translator compiled to WebAssembly. See the package
// documentation for the ABI.
//
// Wasm is NOT safe for concurrent use: calls share one instance and its
// linear memory.
type Wasm struct {
	ctx       context.Context
	runtime   wazero.Runtime
	module    api.Module
	memory    api.Memory
	alloc     api.Function
	translate api.Function
}

// NewWasm compiles and instantiates a translator module.
func NewWasm(ctx context.Context, bin []byte) (*Wasm, error) {
	return NewWasmWithConfig(ctx, bin, nil)
}

// NewWasmWithConfig compiles and instantiates a translator module with custom configuration.
func NewWasmWithConfig(ctx context.Context, bin []byte, cfg *WasmConfig) (*Wasm, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("compile translator module", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("translator"))
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("instantiate translator module", err)
	}

	w := &Wasm{
		ctx:       ctx,
		runtime:   rt,
		module:    mod,
		memory:    mod.Memory(),
		alloc:     mod.ExportedFunction("alloc"),
		translate: mod.ExportedFunction("translate"),
	}

	missing := ""
	switch {
	case w.memory == nil:
		missing = "memory"
	case w.alloc == nil:
		missing = "alloc"
	case w.translate == nil:
		missing = "translate"
	}
	if missing != "" {
		rt.Close(ctx)
		return nil, errors.MissingExport(errors.PhaseLoad, "translator", missing)
	}

	return w, nil
}

// Translate implements Translator.
func (w *Wasm) Translate(src []byte, path string) ([]byte, error) {
	res, err := w.alloc.Call(w.ctx, uint64(len(src)))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTranslate, errors.KindThrown, err, "translator alloc")
	}
	ptr := uint32(res[0])
	if !w.memory.Write(ptr, src) {
		return nil, errors.New(errors.PhaseTranslate, errors.KindInvalidData).
			Module(path).
			Detail("alloc returned out-of-bounds buffer %d+%d", ptr, len(src)).
			Build()
	}

	res, err = w.translate.Call(w.ctx, uint64(ptr), uint64(len(src)))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTranslate, errors.KindThrown, err, "translator trapped on "+path)
	}

	packed := res[0]
	outPtr := uint32((packed &^ wasmErrorBit) >> 32)
	outLen := uint32(packed)
	view, ok := w.memory.Read(outPtr, outLen)
	if !ok {
		return nil, errors.New(errors.PhaseTranslate, errors.KindInvalidData).
			Module(path).
			Detail("translate returned out-of-bounds result %d+%d", outPtr, outLen).
			Build()
	}

	// view aliases linear memory and is overwritten by the next call
	out := make([]byte, len(view))
	copy(out, view)

	if packed&wasmErrorBit != 0 {
		return nil, &errors.TranslationError{Path: path, Message: string(out)}
	}
	return out, nil
}

// Close releases the wazero runtime.
func (w *Wasm) Close(ctx context.Context) error {
	if err := w.runtime.Close(ctx); err != nil {
		return fmt.Errorf("close translator runtime: %w", err)
	}
	return nil
}
