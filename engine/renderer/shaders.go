package renderer

// WGSL sources for the static and skinned pipelines. The DrawUniform struct
// must match model.GPUDrawUniform byte-for-byte (352 bytes); the shading stage
// reads the layout positionally, so field order here is load-bearing.

// wgslShared holds the uniform declaration and fragment stage shared by both
// pipelines.
const wgslShared = `
struct DrawUniform {
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    projection: mat4x4<f32>,
    normal_matrix: mat4x4<f32>,
    light_direction: vec4<f32>,
    base_color_factor: vec4<f32>,
    flags: vec4<u32>,
    metallic_factor: f32,
    roughness_factor: f32,
    normal_scale: f32,
    has_normal_tex: u32,
    emissive_factor: vec4<f32>,
    has_emissive_tex: u32,
};

@group(0) @binding(0) var<uniform> draw: DrawUniform;
@group(0) @binding(1) var tex_sampler: sampler;
@group(0) @binding(2) var base_color_tex: texture_2d<f32>;
@group(0) @binding(3) var normal_tex: texture_2d<f32>;
@group(0) @binding(4) var metallic_roughness_tex: texture_2d<f32>;
@group(0) @binding(5) var emissive_tex: texture_2d<f32>;

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) world_normal: vec3<f32>,
    @location(1) uv: vec2<f32>,
    @location(2) color: vec4<f32>,
};

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    var base = draw.base_color_factor * in.color;
    if (draw.flags.y == 1u) {
        base = base * textureSample(base_color_tex, tex_sampler, in.uv);
    }

    var shade = 1.0;
    if (draw.flags.z == 1u) {
        let n = normalize(in.world_normal);
        let l = normalize(-draw.light_direction.xyz);
        shade = max(dot(n, l), 0.0) * 0.8 + 0.2;
    }

    var mr = vec2<f32>(draw.roughness_factor, draw.metallic_factor);
    if (draw.flags.w == 1u) {
        let s = textureSample(metallic_roughness_tex, tex_sampler, in.uv);
        mr = vec2<f32>(mr.x * s.g, mr.y * s.b);
    }
    // Rough approximation: metallic surfaces keep more of the base tint,
    // rough surfaces flatten the highlight.
    shade = shade * mix(1.0, 0.85, mr.y * (1.0 - mr.x));

    var out_color = vec4<f32>(base.rgb * shade, base.a);

    var emissive = draw.emissive_factor.rgb;
    if (draw.has_emissive_tex == 1u) {
        emissive = emissive * textureSample(emissive_tex, tex_sampler, in.uv).rgb;
    }
    out_color = vec4<f32>(out_color.rgb + emissive, out_color.a);

    return out_color;
}
`

// wgslStatic is the vertex stage for the 48-byte GPUVertex layout.
const wgslStatic = wgslShared + `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(3) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let world_pos = draw.model * vec4<f32>(in.position, 1.0);
    out.clip_position = draw.projection * draw.view * world_pos;
    out.world_normal = (draw.normal_matrix * vec4<f32>(in.normal, 0.0)).xyz;
    out.uv = in.uv;
    out.color = in.color;
    return out;
}
`

// wgslSkinned is the vertex stage for the 80-byte GPUSkinnedVertex layout. The
// joint palette carries vertices into world space; draw.model is identity for
// skinned draws so the multiply is a no-op kept for layout symmetry.
const wgslSkinned = wgslShared + `
@group(0) @binding(6) var<storage, read> joint_matrices: array<mat4x4<f32>>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(3) color: vec4<f32>,
    @location(4) joints: vec4<u32>,
    @location(5) weights: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    let skin_matrix =
        in.weights.x * joint_matrices[in.joints.x] +
        in.weights.y * joint_matrices[in.joints.y] +
        in.weights.z * joint_matrices[in.joints.z] +
        in.weights.w * joint_matrices[in.joints.w];

    var out: VertexOutput;
    let world_pos = draw.model * skin_matrix * vec4<f32>(in.position, 1.0);
    out.clip_position = draw.projection * draw.view * world_pos;
    out.world_normal = (draw.normal_matrix * skin_matrix * vec4<f32>(in.normal, 0.0)).xyz;
    out.uv = in.uv;
    out.color = in.color;
    return out;
}
`
