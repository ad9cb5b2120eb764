package sdftext

// CoverageShaderWGSL is the GPU form of the coverage reconstruction in
// this package. The fragment stage receives per-vertex texture
// coordinates, a per-vertex coverage threshold and a vertex color, and
// samples one SDF atlas page. Output is a straight-alpha color.
//
// The uniform block carries the texture resolution in texels and the
// distance-field spread in source pixels. Keep the math here in sync
// with FilterWidth and Coverage.
const CoverageShaderWGSL = `
struct Params {
    tex_size: vec2<f32>,
    spread: f32,
    _pad: f32,
}

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) threshold: f32,
    @location(2) color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var sdf_tex: texture_2d<f32>;
@group(0) @binding(2) var sdf_sampler: sampler;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let d = textureSample(sdf_tex, sdf_sampler, in.uv).r;

    // Texel footprint of one screen pixel along each texture axis.
    let f = (abs(dpdx(in.uv)) + abs(dpdy(in.uv))) * params.tex_size
        / (4.0 * params.spread);
    let fw = abs(f.x) + abs(f.y);

    let c = clamp((d - in.threshold + 0.5 * fw) / fw, 0.0, 1.0);
    return vec4<f32>(in.color.rgb, in.color.a * c);
}

// One-axis variant for outline and shadow passes: only the horizontal
// texel footprint contributes to the filter width.
@fragment
fn fs_main_x(in: VertexOut) -> @location(0) vec4<f32> {
    let d = textureSample(sdf_tex, sdf_sampler, in.uv).r;

    let fw = (abs(dpdx(in.uv).x) + abs(dpdy(in.uv).x)) * params.tex_size.x
        / (4.0 * params.spread);

    let c = clamp((d - in.threshold + 0.5 * fw) / fw, 0.0, 1.0);
    return vec4<f32>(in.color.rgb, in.color.a * c);
}
`
